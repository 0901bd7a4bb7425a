package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is owned by its creator. Title, description and date are mutable by
// the creator only; deletion is a soft delete via DeletedAt.
type Event struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string     `json:"title" gorm:"not null"`
	Description *string    `json:"description,omitempty" gorm:"type:text"`
	Date        time.Time  `json:"date" gorm:"not null"`
	CreatedBy   uuid.UUID  `json:"createdBy" gorm:"type:uuid;not null"`
	Creator     *User      `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsDeleted reports whether the event has been soft-deleted.
func (e *Event) IsDeleted() bool {
	return e.DeletedAt != nil
}

// EventParticipant is the join row for a non-owner's opt-in membership. The
// composite primary key doubles as the uniqueness constraint that makes
// concurrent toggle-on requests converge instead of duplicating.
type EventParticipant struct {
	UserID  uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey"`
	EventID uuid.UUID `json:"eventId" gorm:"type:uuid;primaryKey"`
}
