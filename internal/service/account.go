package service

import (
	"context"
	"fmt"
	"time"

	"github.com/somonity/accounts/internal/constants"
	"github.com/somonity/accounts/internal/dto"
	apperrors "github.com/somonity/accounts/internal/errors"
	"github.com/somonity/accounts/internal/model"
	ctxutil "github.com/somonity/accounts/pkg/context"
	"github.com/somonity/accounts/pkg/logger"
	"gorm.io/gorm"
)

// CredentialStore is the persistence boundary for users, their role
// associations and per-role claims. Lookups report a missing record with
// gorm.ErrRecordNotFound.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id uint, digest string) error
	UpdateResetCode(ctx context.Context, id uint, code string, issuedAt time.Time) error
	DeleteByID(ctx context.Context, id uint) (int64, error)
	RolesForUser(ctx context.Context, userID uint) ([]model.Role, error)
	ClaimsForRole(ctx context.Context, roleID uint) ([]string, error)
	AddUserRole(ctx context.Context, userID, roleID uint) error
}

// AccountService orchestrates the account flows: registration, login,
// password changes, the reset-code pair and account deletion. Each flow is a
// single linear sequence of collaborator calls; all state lives in the store.
type AccountService struct {
	store      CredentialStore
	hasher     *HashService
	tokens     *JWTService
	resetCodes *ResetCodeManager
	mailer     EmailSender
}

func NewAccountService(
	store CredentialStore,
	hasher *HashService,
	tokens *JWTService,
	resetCodes *ResetCodeManager,
	mailer EmailSender,
) *AccountService {
	return &AccountService{
		store:      store,
		hasher:     hasher,
		tokens:     tokens,
		resetCodes: resetCodes,
		mailer:     mailer,
	}
}

// Register creates a new active user with the default role
func (s *AccountService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Register")

	logger.InfoWithContext(ctx, "Registering new user").
		String("username", req.Username).
		Log()

	_, err := s.store.FindByUsername(ctx, req.Username)
	if err == nil {
		logger.WarnWithContext(ctx, "Username already taken").
			String("username", req.Username).
			Log()
		return nil, apperrors.ErrUsernameExists
	}
	if err != gorm.ErrRecordNotFound {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: s.hasher.Hash(req.Password),
		Status:   constants.StatusActive,
	}

	if err := s.store.Create(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", req.Username).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.store.AddUserRole(ctx, user.ID, constants.DefaultRoleID); err != nil {
		logger.ErrorWithContext(ctx, "Failed to assign default role").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User registered").
		String("username", req.Username).
		Uint("user_id", user.ID).
		Log()

	return &dto.RegisterResponse{UserID: user.ID}, nil
}

// Login verifies credentials and issues a session token. Unknown usernames
// and wrong passwords fail identically.
func (s *AccountService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Login")

	logger.InfoWithContext(ctx, "User login attempt").
		String("username", req.Username).
		Log()

	user, err := s.store.FindByUsername(ctx, req.Username)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.WarnWithContext(ctx, "Login failed").
				String("username", req.Username).
				Log()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.hasher.Verify(req.Password, user.Password) {
		logger.WarnWithContext(ctx, "Login failed").
			String("username", req.Username).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(ctx, user)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to generate session token").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User logged in").
		String("username", req.Username).
		Uint("user_id", user.ID).
		Log()

	return &dto.LoginResponse{Token: token}, nil
}

// ChangePassword replaces the stored digest after verifying the old password
func (s *AccountService) ChangePassword(ctx context.Context, userID uint, req *dto.ChangePasswordRequest) error {
	ctx = ctxutil.WithOperation(ctx, "service", "ChangePassword")

	logger.InfoWithContext(ctx, "Changing user password").
		Uint("user_id", userID).
		Log()

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.WarnWithContext(ctx, "User not found for password change").
				Uint("user_id", userID).
				Log()
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.hasher.Verify(req.OldPassword, user.Password) {
		logger.WarnWithContext(ctx, "Old password mismatch").
			Uint("user_id", userID).
			Log()
		return apperrors.ErrIncorrectPassword
	}

	if err := s.store.UpdatePassword(ctx, userID, s.hasher.Hash(req.NewPassword)); err != nil {
		logger.ErrorWithContext(ctx, "Failed to update password").
			Uint("user_id", userID).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password changed").
		Uint("user_id", userID).
		Log()

	return nil
}

// ForgotPasswordCodeGenerator generates a reset code for the user behind the
// email address and mails it out.
func (s *AccountService) ForgotPasswordCodeGenerator(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	ctx = ctxutil.WithOperation(ctx, "service", "ForgotPasswordCodeGenerator")

	logger.InfoWithContext(ctx, "Generating password reset code").
		String("email", req.Email).
		Log()

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.WarnWithContext(ctx, "No user for reset code").
				String("email", req.Email).
				Log()
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	code, err := s.resetCodes.Generate(ctx, user)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to store reset code").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	body := fmt.Sprintf("<h1>%s</h1>", code)
	if err := s.mailer.Send([]string{req.Email}, constants.ResetEmailSubject, body); err != nil {
		logger.ErrorWithContext(ctx, "Failed to send reset code email").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Reset code sent").
		Uint("user_id", user.ID).
		Log()

	return nil
}

// ResetPassword applies a new password if the reset code is still valid
func (s *AccountService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	ctx = ctxutil.WithOperation(ctx, "service", "ResetPassword")

	logger.InfoWithContext(ctx, "Resetting user password").
		String("email", req.Email).
		Log()

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.WarnWithContext(ctx, "No user for password reset").
				String("email", req.Email).
				Log()
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.resetCodes.Validate(user, req.Code) {
		logger.WarnWithContext(ctx, "Reset code rejected").
			Uint("user_id", user.ID).
			String("code", req.Code).
			Log()
		return apperrors.ErrResetCodeInvalid
	}

	if err := s.store.UpdatePassword(ctx, user.ID, s.hasher.Hash(req.Password)); err != nil {
		logger.ErrorWithContext(ctx, "Failed to update password").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password reset").
		Uint("user_id", user.ID).
		Log()

	return nil
}

// DeleteAccount removes the user; deleting a missing user reports not found
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "DeleteAccount")

	logger.InfoWithContext(ctx, "Deleting account").
		Uint("user_id", userID).
		Log()

	affected, err := s.store.DeleteByID(ctx, userID)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to delete account").
			Uint("user_id", userID).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if affected == 0 {
		logger.WarnWithContext(ctx, "No account to delete").
			Uint("user_id", userID).
			Log()
		return apperrors.ErrUserNotFound
	}

	logger.InfoWithContext(ctx, "Account deleted").
		Uint("user_id", userID).
		Log()

	return nil
}
