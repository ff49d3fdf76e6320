package api

import (
	"context"

	"soultrack/followup/internal/auth"
	"soultrack/followup/internal/common"
	"soultrack/followup/internal/config"
	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/events"
	"soultrack/followup/internal/jobs"
	"soultrack/followup/internal/metrics"
	"soultrack/followup/internal/notify"
	"soultrack/followup/internal/services"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type Services struct {
	Sessions   *services.SessionService
	Visibility *services.VisibilityService
	Transfer   *services.TransferService
	Lifecycle  *services.LifecycleService
	Reports    *services.ReportService
}

type Dependencies struct {
	Config   *config.Config
	GormDB   *gorm.DB
	SqlDB    *sqlx.DB
	Repo     *repositories.Set
	Cache    common.CacheInterface
	Signer   *common.IntakeLinkSigner
	Verifier *auth.TokenVerifier
	Services *Services
	Jobs     *jobs.Jobs
	Metrics  *metrics.MetricsRegistry
}

// InitDependencies wires repositories, services and jobs over the opened
// stores. The scheduled sweep starts here when cfg.SweepInterval is positive
// and stops with ctx.
func InitDependencies(
	ctx context.Context,
	cfg *config.Config,
	gdb *gorm.DB,
	sdb *sqlx.DB,
	cache common.CacheInterface,
	notifier notify.Notifier,
	publisher events.Publisher,
	metricsReg *metrics.MetricsRegistry,
) (*Dependencies, error) {
	repos := repositories.NewSet(gdb, sdb)

	visibility := services.NewVisibilityService(repos.Contacts, repos.FollowUps)
	transfer := services.NewTransferService(gdb, repos, visibility, notifier, publisher, metricsReg, cfg.HandoffMode)

	svcs := &Services{
		Sessions:   services.NewSessionService(repos.Profiles, repos.CellGroups),
		Visibility: visibility,
		Transfer:   transfer,
		Lifecycle:  services.NewLifecycleService(gdb, repos, visibility, transfer, publisher, metricsReg),
		Reports:    services.NewReportService(repos.Reports, visibility, cache, metricsReg),
	}

	return &Dependencies{
		Config:   cfg,
		GormDB:   gdb,
		SqlDB:    sdb,
		Repo:     repos,
		Cache:    cache,
		Signer:   common.NewIntakeLinkSigner([]byte(cfg.IntakeLinkSecret), cache),
		Verifier: auth.NewTokenVerifier([]byte(cfg.JWTSecret)),
		Services: svcs,
		Jobs:     jobs.InitializeJobs(ctx, gdb, repos, cfg.RetentionMonths, cfg.SweepInterval, metricsReg, publisher),
		Metrics:  metricsReg,
	}, nil
}
