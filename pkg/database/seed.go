package database

import (
	"github.com/somonity/accounts/internal/constants"
	"github.com/somonity/accounts/internal/model"
	"gorm.io/gorm"
)

// Seed creates initial data for the database
func Seed(db *gorm.DB) error {
	if err := SeedRoles(db); err != nil {
		return err
	}
	return SeedRoleClaims(db)
}

// SeedRoles creates the fixed role catalog if missing. Registration attaches
// the default role by id, so these rows must exist before the first signup.
func SeedRoles(db *gorm.DB) error {
	roles := []model.Role{
		{ID: constants.RoleIDAdmin, Name: constants.RoleNameAdmin},
		{ID: constants.RoleIDManager, Name: constants.RoleNameManager},
		{ID: constants.RoleIDUser, Name: constants.RoleNameUser},
	}

	for _, role := range roles {
		var existing model.Role
		result := db.Where("id = ?", role.ID).First(&existing)
		if result.Error == nil {
			continue
		}
		if result.Error != gorm.ErrRecordNotFound {
			return result.Error
		}
		if err := db.Create(&role).Error; err != nil {
			return err
		}
	}

	return nil
}

// SeedRoleClaims grants the baseline permission values per role
func SeedRoleClaims(db *gorm.DB) error {
	claims := map[uint][]string{
		constants.RoleIDAdmin:   {"read", "write", "delete", "manage-users"},
		constants.RoleIDManager: {"read", "write"},
		constants.RoleIDUser:    {"read"},
	}

	for roleID, values := range claims {
		var count int64
		if err := db.Model(&model.RoleClaim{}).Where("role_id = ?", roleID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		for _, value := range values {
			claim := model.RoleClaim{RoleID: roleID, ClaimValue: value}
			if err := db.Create(&claim).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
