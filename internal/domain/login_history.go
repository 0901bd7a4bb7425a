package domain

import (
	"time"

	"github.com/google/uuid"
)

// LoginHistory records one successful login. Rows are append-only: they are
// never mutated or deleted, and recent-history queries order by LoginAt
// descending.
type LoginHistory struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	IPAddress string    `json:"ipAddress" gorm:"not null"`
	UserAgent string    `json:"userAgent" gorm:"not null"`
	LoginAt   time.Time `json:"loginAt" gorm:"not null;index"`
}

// MatchesClient reports whether the record was produced by the same
// (address, agent) pair as the given request fingerprint.
func (h *LoginHistory) MatchesClient(ipAddress, userAgent string) bool {
	return h.IPAddress == ipAddress && h.UserAgent == userAgent
}
