package model

import (
	"time"

	"github.com/google/uuid"
)

// students
type Student struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	GradeLevel string `gorm:"type:varchar(32)"`
	Comment    string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Classes []FinalClass `gorm:"many2many:enrollments;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// enrollments — кастомная join-таблица студент <-> занятие.
type Enrollment struct {
	StudentID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	FinalClassID uuid.UUID `gorm:"type:uuid;primaryKey"`

	CreatedAt time.Time `gorm:"not null;default:now()"`

	Student *Student    `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Class   *FinalClass `gorm:"foreignKey:FinalClassID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
