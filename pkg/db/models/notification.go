package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/RemyAthisayaa17/mceverse/pkg/enums"
)

// Notification is one entry in a student's notification feed. Fan-out writes
// these best-effort; losing one never rolls back the event that caused it.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StudentID uuid.UUID              `gorm:"type:uuid;column:student_id;not null"`
	Type      enums.NotificationType `gorm:"type:text;not null"`
	Title     string                 `gorm:"type:text;not null"`
	Message   string                 `gorm:"type:text;not null"`
	RelatedID *uuid.UUID             `gorm:"type:uuid;column:related_id"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string { return "student_notifications" }
