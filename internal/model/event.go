package model

import (
	"time"

	"github.com/google/uuid"
)

// Тип события аудита.
type EventType string

const (
	EventTypeClassCreated     EventType = "class_created"
	EventTypeClassDeleted     EventType = "class_deleted"
	EventTypeScheduleUpdated  EventType = "schedule_updated"
	EventTypeClassRescheduled EventType = "class_rescheduled"
	EventTypeUserValidated    EventType = "user_validated"
)

// events — события аудита
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`

	UserID  *uuid.UUID `gorm:"type:uuid;index"`
	ClassID *uuid.UUID `gorm:"type:uuid;index"`

	Details string `gorm:"type:text"`

	// Навигационные поля
	User  *User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Class *FinalClass `gorm:"foreignKey:ClassID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
