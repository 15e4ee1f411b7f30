package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username      string    `gorm:"column:username;uniqueIndex;not null"`
	Email         string    `gorm:"column:email;not null"`
	Phone         string    `gorm:"column:phone"`
	Password      string    `gorm:"column:password;not null"` // digest, never plaintext
	Status        string    `gorm:"column:status;not null;default:Active"`
	ResetCode     string    `gorm:"column:reset_code"`
	ResetCodeTime time.Time `gorm:"column:reset_code_time"`
}
