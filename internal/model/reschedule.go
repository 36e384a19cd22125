package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// one_time_reschedules — разовый перенос занятия с даты FromDate на ToDate.
// FromDate == ToDate означает смену только времени. Список append-only:
// записи не редактируются и не удаляются потребителями.
type OneTimeReschedule struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	ClassID uuid.UUID `gorm:"type:uuid;not null;index"`

	FromDate datatypes.Date `gorm:"type:date;not null"`
	ToDate   datatypes.Date `gorm:"type:date;not null;index"`

	// Слот действует на ToDate.
	TimeSlot string `gorm:"type:varchar(32);not null"`

	Reason string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`

	Class *FinalClass `gorm:"foreignKey:ClassID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
