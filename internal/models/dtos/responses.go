package dtos

import (
	"time"

	"soultrack/followup/internal/models/entities"
	gormModels "soultrack/followup/internal/models/gorm"
)

// DispatchOutcome is the per-contact result of a batch dispatch.
type DispatchOutcome string

const (
	DispatchSent      DispatchOutcome = "sent"
	DispatchDuplicate DispatchOutcome = "already_sent"
	DispatchFailed    DispatchOutcome = "failed"
)

type DispatchItem struct {
	ContactID  int64           `json:"contact_id"`
	Outcome    DispatchOutcome `json:"outcome"`
	FollowUpID int64           `json:"follow_up_id,omitempty"`
	Warning    string          `json:"warning,omitempty"`
	Error      string          `json:"error,omitempty"`
	Message    *Message        `json:"message,omitempty"`
}

type DispatchResult struct {
	DestinationType string         `json:"destination_type"`
	DestinationID   string         `json:"destination_id"`
	DestinationName string         `json:"destination_name"`
	Sent            int            `json:"sent"`
	Duplicates      int            `json:"duplicates"`
	Failed          int            `json:"failed"`
	Items           []DispatchItem `json:"items"`
}

// Message is a composed notification ready to be opened by the client.
type Message struct {
	Text        string `json:"text"`
	WhatsAppURI string `json:"whatsapp_uri,omitempty"`
	MailtoURI   string `json:"mailto_uri,omitempty"`
}

type SessionResponse struct {
	UserID       string   `json:"user_id"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	ChurchID     int64    `json:"church_id"`
	BranchID     int64    `json:"branch_id"`
	CellGroupIDs []int64  `json:"cellule_ids"`
	CounselorID  string   `json:"conseiller_id,omitempty"`
}

type IntakeLinkResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SweepResponse struct {
	Deleted  int64     `json:"deleted"`
	RanAt    time.Time `json:"ran_at"`
	Cutoff   time.Time `json:"cutoff"`
	Duration string    `json:"duration"`
}

type ReconcileResponse struct {
	Orphans  []entities.Orphan                   `json:"orphans"`
	Recorded int                                 `json:"recorded"`
	Pending  []gormModels.TransferReconciliation `json:"pending"`
}

// ReportSummary backs the dashboard, which polls it every few seconds.
type ReportSummary struct {
	FollowUpsByStatus []entities.StatusCodeCount `json:"follow_ups_by_status"`
	FollowUpsByCell   []entities.CelluleCount    `json:"follow_ups_by_cellule"`
	ContactsByStatus  []entities.StatusCount     `json:"contacts_by_status"`
	Members           int64                      `json:"members"`
	GeneratedAt       time.Time                  `json:"generated_at"`
}

// StatusUpdateResult carries whichever row survives a status change: the
// updated record, or the member it became.
type StatusUpdateResult struct {
	FollowUp *gormModels.FollowUpRecord `json:"follow_up,omitempty"`
	Contact  *gormModels.Contact        `json:"contact,omitempty"`
	Member   *gormModels.Member         `json:"member,omitempty"`
}
