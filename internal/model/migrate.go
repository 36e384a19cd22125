package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей учебного ядра.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Role{},
		&UserRole{},
		&Tutor{},
		&Student{},
		&FinalClass{},
		&Enrollment{},
		&OneTimeReschedule{},
		&Event{},
	)
}
