package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/somonity/accounts/internal/constants"
	"github.com/somonity/accounts/internal/dto"
	apperrors "github.com/somonity/accounts/internal/errors"
	"github.com/somonity/accounts/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStore is an in-memory CredentialStore used by the flow tests
type memStore struct {
	nextID     uint
	users      map[uint]*model.User
	userRoles  map[uint][]uint
	roleNames  map[uint]string
	roleClaims map[uint][]string
}

func newMemStore() *memStore {
	return &memStore{
		nextID:     1,
		users:      map[uint]*model.User{},
		userRoles:  map[uint][]uint{},
		roleNames:  map[uint]string{constants.RoleIDAdmin: "Admin", constants.RoleIDManager: "Manager", constants.RoleIDUser: "User"},
		roleClaims: map[uint][]string{},
	}
}

func (s *memStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) FindByID(_ context.Context, id uint) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memStore) Create(_ context.Context, user *model.User) error {
	user.ID = s.nextID
	s.nextID++
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *memStore) UpdatePassword(_ context.Context, id uint, digest string) error {
	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Password = digest
	return nil
}

func (s *memStore) UpdateResetCode(_ context.Context, id uint, code string, issuedAt time.Time) error {
	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.ResetCode = code
	user.ResetCodeTime = issuedAt
	return nil
}

func (s *memStore) DeleteByID(_ context.Context, id uint) (int64, error) {
	if _, ok := s.users[id]; !ok {
		return 0, nil
	}
	delete(s.users, id)
	delete(s.userRoles, id)
	return 1, nil
}

func (s *memStore) RolesForUser(_ context.Context, userID uint) ([]model.Role, error) {
	var roles []model.Role
	for _, roleID := range s.userRoles[userID] {
		roles = append(roles, model.Role{ID: roleID, Name: s.roleNames[roleID]})
	}
	return roles, nil
}

func (s *memStore) ClaimsForRole(_ context.Context, roleID uint) ([]string, error) {
	return s.roleClaims[roleID], nil
}

func (s *memStore) AddUserRole(_ context.Context, userID, roleID uint) error {
	s.userRoles[userID] = append(s.userRoles[userID], roleID)
	return nil
}

type fakeMailer struct {
	to      []string
	subject string
	body    string
	err     error
	sent    int
}

func (m *fakeMailer) Send(to []string, subject, htmlBody string) error {
	m.sent++
	m.to = to
	m.subject = subject
	m.body = htmlBody
	return m.err
}

func newTestAccountService(store *memStore, mailer *fakeMailer) (*AccountService, *ResetCodeManager, *JWTService) {
	hasher := NewHashService()
	tokens := NewJWTService(testJWTConfig(), store, nil)
	resetCodes := NewResetCodeManager(store)
	accounts := NewAccountService(store, hasher, tokens, resetCodes, mailer)
	return accounts, resetCodes, tokens
}

func TestAccountService_Register(t *testing.T) {
	store := newMemStore()
	accounts, _, _ := newTestAccountService(store, &fakeMailer{})

	resp, err := accounts.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice",
		Email:    "a@x.com",
		Phone:    "555",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotZero(t, resp.UserID)

	user := store.users[resp.UserID]
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, constants.StatusActive, user.Status)
	assert.NotEqual(t, "password123", user.Password)
	assert.Equal(t, []uint{constants.DefaultRoleID}, store.userRoles[resp.UserID])
}

func TestAccountService_Register_DuplicateUsername(t *testing.T) {
	store := newMemStore()
	accounts, _, _ := newTestAccountService(store, &fakeMailer{})

	req := &dto.RegisterRequest{Username: "alice", Email: "a@x.com", Phone: "555", Password: "password123"}

	first, err := accounts.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = accounts.Register(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrUsernameExists)

	// The first registration created exactly one role association
	assert.Len(t, store.userRoles[first.UserID], 1)
	assert.Len(t, store.users, 1)
}

func TestAccountService_Login_IssuesToken(t *testing.T) {
	store := newMemStore()
	store.roleClaims[constants.RoleIDUser] = []string{"read"}
	accounts, _, tokens := newTestAccountService(store, &fakeMailer{})

	resp, err := accounts.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice", Email: "a@x.com", Phone: "555", Password: "password123",
	})
	require.NoError(t, err)

	login, err := accounts.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)

	claims, err := tokens.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatUint(uint64(resp.UserID), 10), claims.Subject)
	assert.Equal(t, []string{"User"}, claims.Roles)
	assert.Equal(t, []string{"read"}, claims.Permissions)
}

func TestAccountService_Login_GenericFailure(t *testing.T) {
	store := newMemStore()
	accounts, _, _ := newTestAccountService(store, &fakeMailer{})

	_, err := accounts.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice", Email: "a@x.com", Phone: "555", Password: "password123",
	})
	require.NoError(t, err)

	// A wrong password and an unknown username fail with the same error
	_, wrongPassword := accounts.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "wrong"})
	_, unknownUser := accounts.Login(context.Background(), &dto.LoginRequest{Username: "nobody", Password: "password123"})

	require.ErrorIs(t, wrongPassword, apperrors.ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, apperrors.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestAccountService_ChangePassword(t *testing.T) {
	store := newMemStore()
	accounts, _, _ := newTestAccountService(store, &fakeMailer{})

	resp, err := accounts.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice", Email: "a@x.com", Phone: "555", Password: "password123",
	})
	require.NoError(t, err)

	err = accounts.ChangePassword(context.Background(), resp.UserID, &dto.ChangePasswordRequest{
		OldPassword: "not-the-password",
		NewPassword: "newpassword1",
	})
	require.ErrorIs(t, err, apperrors.ErrIncorrectPassword)

	err = accounts.ChangePassword(context.Background(), resp.UserID, &dto.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword1",
	})
	require.NoError(t, err)

	_, err = accounts.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "newpassword1"})
	require.NoError(t, err)

	_, err = accounts.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "password123"})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAccountService_ChangePassword_UnknownUser(t *testing.T) {
	accounts, _, _ := newTestAccountService(newMemStore(), &fakeMailer{})

	err := accounts.ChangePassword(context.Background(), 99, &dto.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword1",
	})
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestAccountService_ForgotAndResetPassword(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	accounts, _, _ := newTestAccountService(store, mailer)

	resp, err := accounts.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice", Email: "a@x.com", Phone: "555", Password: "password123",
	})
	require.NoError(t, err)

	err = accounts.ForgotPasswordCodeGenerator(context.Background(), &dto.ForgotPasswordRequest{Email: "a@x.com"})
	require.NoError(t, err)

	require.Equal(t, 1, mailer.sent)
	assert.Equal(t, []string{"a@x.com"}, mailer.to)
	assert.Equal(t, constants.ResetEmailSubject, mailer.subject)

	code := store.users[resp.UserID].ResetCode
	require.NotEmpty(t, code)
	assert.Contains(t, mailer.body, code)

	err = accounts.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Email:    "a@x.com",
		Code:     code,
		Password: "reset-password1",
	})
	require.NoError(t, err)

	_, err = accounts.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "reset-password1"})
	require.NoError(t, err)
}

func TestAccountService_ResetPassword_ExpiredCode(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	accounts, resetCodes, _ := newTestAccountService(store, mailer)

	_, err := accounts.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice", Email: "a@x.com", Phone: "555", Password: "password123",
	})
	require.NoError(t, err)

	err = accounts.ForgotPasswordCodeGenerator(context.Background(), &dto.ForgotPasswordRequest{Email: "a@x.com"})
	require.NoError(t, err)

	// Step past the validity window
	resetCodes.now = func() time.Time { return time.Now().Add(3 * time.Minute) }

	err = accounts.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Email:    "a@x.com",
		Code:     "0000",
		Password: "reset-password1",
	})
	require.ErrorIs(t, err, apperrors.ErrResetCodeInvalid)
}

func TestAccountService_ForgotPassword_UnknownEmail(t *testing.T) {
	accounts, _, _ := newTestAccountService(newMemStore(), &fakeMailer{})

	err := accounts.ForgotPasswordCodeGenerator(context.Background(), &dto.ForgotPasswordRequest{Email: "nobody@x.com"})
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestAccountService_ForgotPassword_MailerFailureIsInternal(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{err: errors.New("smtp unreachable")}
	accounts, _, _ := newTestAccountService(store, mailer)

	_, err := accounts.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice", Email: "a@x.com", Phone: "555", Password: "password123",
	})
	require.NoError(t, err)

	err = accounts.ForgotPasswordCodeGenerator(context.Background(), &dto.ForgotPasswordRequest{Email: "a@x.com"})
	require.Error(t, err)

	domainErr := apperrors.GetDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, apperrors.ErrInternal.Code, domainErr.Code)
}

func TestAccountService_DeleteAccount(t *testing.T) {
	store := newMemStore()
	accounts, _, _ := newTestAccountService(store, &fakeMailer{})

	resp, err := accounts.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice", Email: "a@x.com", Phone: "555", Password: "password123",
	})
	require.NoError(t, err)

	require.NoError(t, accounts.DeleteAccount(context.Background(), resp.UserID))

	_, err = store.FindByID(context.Background(), resp.UserID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = accounts.DeleteAccount(context.Background(), resp.UserID)
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
