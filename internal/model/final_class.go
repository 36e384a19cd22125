package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Статус занятия.
type ClassStatus string

const (
	ClassStatusActive    ClassStatus = "ACTIVE"
	ClassStatusCompleted ClassStatus = "COMPLETED"
	ClassStatusCancelled ClassStatus = "CANCELLED"
)

// final_classes
type FinalClass struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	TutorID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name    string `gorm:"type:varchar(255);not null"`
	Subject string `gorm:"type:varchar(255)"`

	Status ClassStatus `gorm:"type:varchar(32);not null;default:'ACTIVE';index"`

	// Дни недели — JSON-массив токенов MONDAY..SUNDAY (можно хранить как JSONB).
	DaysOfWeek datatypes.JSON `gorm:"type:jsonb"`

	// Слот в формате хранения и отображения: "HH:MM - HH:MM".
	TimeSlot string `gorm:"type:varchar(32)"`

	// Чистые даты без времени — datatypes.Date. EndDate nil = занятие бессрочное.
	StartDate *datatypes.Date `gorm:"type:date"`
	EndDate   *datatypes.Date `gorm:"type:date"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Tutor *Tutor `gorm:"foreignKey:TutorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Reschedules []OneTimeReschedule `gorm:"foreignKey:ClassID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Students []Student `gorm:"many2many:enrollments;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
