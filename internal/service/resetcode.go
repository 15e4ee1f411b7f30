package service

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/somonity/accounts/internal/model"
)

const (
	// A generated code stays valid for strictly less than this window
	resetCodeValidity = 2 * time.Minute

	resetCodeMin = 1000
	resetCodeMax = 9999
)

// ResetCodeStore persists the generated code on the user record
type ResetCodeStore interface {
	UpdateResetCode(ctx context.Context, id uint, code string, issuedAt time.Time) error
}

// ResetCodeManager generates and validates short-lived password-reset codes.
// Each generation overwrites the previous code; there is no history and no
// consume step, so the latest code simply expires or is superseded.
type ResetCodeManager struct {
	store ResetCodeStore
	now   func() time.Time
}

func NewResetCodeManager(store ResetCodeStore) *ResetCodeManager {
	return &ResetCodeManager{
		store: store,
		now:   time.Now,
	}
}

// Generate draws a 4-digit code, stamps it on the user record with the
// current UTC time, persists it and returns it for delivery.
func (m *ResetCodeManager) Generate(ctx context.Context, user *model.User) (string, error) {
	code := strconv.Itoa(resetCodeMin + rand.Intn(resetCodeMax-resetCodeMin+1))
	issuedAt := m.now().UTC()

	if err := m.store.UpdateResetCode(ctx, user.ID, code, issuedAt); err != nil {
		return "", err
	}

	user.ResetCode = code
	user.ResetCodeTime = issuedAt

	return code, nil
}

// Validate reports whether a reset may proceed for the user. The policy is
// the issuance window alone: elapsed time strictly under two minutes and the
// stored and current calendar years equal. The submitted code is not
// compared against the stored one; callers surface it in their failure
// message.
func (m *ResetCodeManager) Validate(user *model.User, submittedCode string) bool {
	now := m.now().UTC()
	issuedAt := user.ResetCodeTime

	elapsed := now.Sub(issuedAt)
	return elapsed >= 0 && elapsed < resetCodeValidity && now.Year() == issuedAt.Year()
}
