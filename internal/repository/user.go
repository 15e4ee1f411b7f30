package repository

import (
	"context"
	"time"

	"github.com/somonity/accounts/internal/model"
	ctxutil "github.com/somonity/accounts/pkg/context"
	"github.com/somonity/accounts/pkg/logger"
	"gorm.io/gorm"
)

// UserRepository is the gorm-backed credential store: users, their role
// associations and per-role permission claims.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername finds a user by username
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindByUsername")

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("username = ?", username).First(&user)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to get user by username").
				String("username", username).
				Duration(time.Since(start)).
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "User retrieved by username").
		String("username", username).
		Uint("user_id", user.ID).
		Duration(time.Since(start)).
		Log()

	return &user, nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindByEmail")

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to get user by email").
				String("email", email).
				Duration(time.Since(start)).
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &user, nil
}

// FindByID finds a user by id
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindByID")

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to get user by ID").
				Uint("user_id", id).
				Duration(time.Since(start)).
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &user, nil
}

// Create inserts a new user record
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Create")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", user.Username).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "User created").
		String("username", user.Username).
		Uint("user_id", user.ID).
		Duration(time.Since(start)).
		Log()

	return nil
}

// UpdatePassword stores a new password digest
func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, digest string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdatePassword")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password", digest)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user password").
			Uint("user_id", id).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No user found to update password").
			Uint("user_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	return nil
}

// UpdateResetCode stores the reset code and its issuance time, replacing any
// previous code.
func (r *UserRepository) UpdateResetCode(ctx context.Context, id uint, code string, issuedAt time.Time) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateResetCode")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reset_code":      code,
		"reset_code_time": issuedAt,
	})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update reset code").
			Uint("user_id", id).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No user found to update reset code").
			Uint("user_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	return nil
}

// DeleteByID deletes a user and reports how many rows were affected
func (r *UserRepository) DeleteByID(ctx context.Context, id uint) (int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteByID")

	start := time.Now()
	result := r.db.WithContext(ctx).Delete(&model.User{}, id)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete user").
			Uint("user_id", id).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	logger.InfoWithContext(ctx, "User delete executed").
		Uint("user_id", id).
		Int64("rows_affected", result.RowsAffected).
		Duration(time.Since(start)).
		Log()

	return result.RowsAffected, nil
}

// RolesForUser resolves every role the user holds
func (r *UserRepository) RolesForUser(ctx context.Context, userID uint) ([]model.Role, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "RolesForUser")

	start := time.Now()
	var roles []model.Role

	err := r.db.WithContext(ctx).
		Model(&model.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND user_roles.deleted_at IS NULL", userID).
		Find(&roles).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to get roles for user").
			Uint("user_id", userID).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	return roles, nil
}

// ClaimsForRole returns the permission claim values granted to a role
func (r *UserRepository) ClaimsForRole(ctx context.Context, roleID uint) ([]string, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "ClaimsForRole")

	start := time.Now()
	var claims []string

	err := r.db.WithContext(ctx).
		Model(&model.RoleClaim{}).
		Where("role_id = ?", roleID).
		Pluck("claim_value", &claims).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to get claims for role").
			Uint("role_id", roleID).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	return claims, nil
}

// AddUserRole associates a role with a user
func (r *UserRepository) AddUserRole(ctx context.Context, userID, roleID uint) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "AddUserRole")

	userRole := model.UserRole{UserID: userID, RoleID: roleID}

	start := time.Now()
	if err := r.db.WithContext(ctx).Create(&userRole).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to add user role").
			Uint("user_id", userID).
			Uint("role_id", roleID).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return err
	}

	logger.DebugWithContext(ctx, "User role added").
		Uint("user_id", userID).
		Uint("role_id", roleID).
		Duration(time.Since(start)).
		Log()

	return nil
}
