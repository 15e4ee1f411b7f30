package model

import "gorm.io/gorm"

type Role struct {
	ID   uint   `gorm:"primarykey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

// UserRole associates a user with a role. A user may hold any number of
// roles; registration attaches the default one.
type UserRole struct {
	gorm.Model
	UserID uint `gorm:"column:user_id;index;not null"`
	RoleID uint `gorm:"column:role_id;index;not null"`
}

// RoleClaim is a single permission value granted to a role and inherited by
// every user holding it.
type RoleClaim struct {
	ID         uint   `gorm:"primarykey"`
	RoleID     uint   `gorm:"column:role_id;index;not null"`
	ClaimValue string `gorm:"column:claim_value;not null"`
}
