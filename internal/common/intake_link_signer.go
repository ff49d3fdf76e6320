package common

import (
	"errors"
	"fmt"
	"time"

	"soultrack/followup/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrIntakeLinkInvalid = errors.New("invalid intake link")
	ErrIntakeLinkExpired = errors.New("intake link expired")
	ErrIntakeLinkRevoked = errors.New("intake link revoked")
	// ErrRevocationUnavailable means the revocation list could not be read;
	// the link is refused rather than assumed valid.
	ErrRevocationUnavailable = errors.New("intake link revocation list unavailable")
)

// IntakeLink is the decoded content of a public submission link.
type IntakeLink struct {
	ChurchID  int64
	BranchID  int64
	TokenID   string
	ExpiresAt time.Time
}

type intakeClaims struct {
	ChurchID int64 `json:"church_id"`
	BranchID int64 `json:"branch_id"`
	jwt.RegisteredClaims
}

// IntakeLinkSigner issues and checks the tokens embedded in public intake
// URLs. Revoked token ids are kept in the cache until the token would have
// expired anyway.
type IntakeLinkSigner struct {
	secretKey []byte
	cache     CacheInterface
	now       func() time.Time
}

func NewIntakeLinkSigner(secretKey []byte, cache CacheInterface) *IntakeLinkSigner {
	return &IntakeLinkSigner{secretKey: secretKey, cache: cache, now: time.Now}
}

// Generate signs a link for the given church/branch valid for ttl.
func (s *IntakeLinkSigner) Generate(churchID, branchID int64, ttl time.Duration) (string, *IntakeLink, error) {
	now := s.now()
	link := &IntakeLink{
		ChurchID:  churchID,
		BranchID:  branchID,
		TokenID:   uuid.New().String(),
		ExpiresAt: now.Add(ttl).Truncate(time.Second),
	}

	claims := intakeClaims{
		ChurchID: churchID,
		BranchID: branchID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        link.TokenID,
			Subject:   "intake",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(link.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign intake link: %w", err)
	}
	return token, link, nil
}

// Validate checks signature, expiry and the revocation list.
func (s *IntakeLinkSigner) Validate(tokenString string) (*IntakeLink, error) {
	claims := &intakeClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrIntakeLinkExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrIntakeLinkInvalid, err)
	}
	if !token.Valid || claims.ID == "" || claims.Subject != "intake" || claims.ChurchID == 0 {
		return nil, ErrIntakeLinkInvalid
	}

	revoked, err := s.cache.Exists(string(constants.CachePrefixRevokedIntake) + claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	if revoked {
		return nil, ErrIntakeLinkRevoked
	}

	return &IntakeLink{
		ChurchID:  claims.ChurchID,
		BranchID:  claims.BranchID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke blocks tokenID until expiresAt.
func (s *IntakeLinkSigner) Revoke(tokenID string, expiresAt time.Time) {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}
	s.cache.Set(string(constants.CachePrefixRevokedIntake)+tokenID, true, ttl)
}
