package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/somonity/accounts/internal/model"
)

type recordingResetCodeStore struct {
	userID   uint
	code     string
	issuedAt time.Time
	err      error
	calls    int
}

func (s *recordingResetCodeStore) UpdateResetCode(_ context.Context, id uint, code string, issuedAt time.Time) error {
	s.calls++
	s.userID = id
	s.code = code
	s.issuedAt = issuedAt
	return s.err
}

func TestResetCodeManager_Generate(t *testing.T) {
	store := &recordingResetCodeStore{}
	manager := NewResetCodeManager(store)

	issued := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issued }

	user := &model.User{}
	user.ID = 42

	for i := 0; i < 50; i++ {
		code, err := manager.Generate(context.Background(), user)
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}

		value, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("Expected numeric code, got %q", code)
		}
		if value < 1000 || value > 9999 {
			t.Errorf("Expected code in [1000, 9999], got %d", value)
		}

		if store.userID != 42 {
			t.Errorf("Expected store update for user 42, got %d", store.userID)
		}
		if store.code != code {
			t.Errorf("Stored code %q does not match returned code %q", store.code, code)
		}
		if !store.issuedAt.Equal(issued) {
			t.Errorf("Expected issuance time %v, got %v", issued, store.issuedAt)
		}
		if user.ResetCode != code {
			t.Errorf("User record carries code %q, want %q", user.ResetCode, code)
		}
	}
}

func TestResetCodeManager_GenerateOverwritesPriorCode(t *testing.T) {
	store := &recordingResetCodeStore{}
	manager := NewResetCodeManager(store)

	user := &model.User{}
	user.ID = 7

	first, err := manager.Generate(context.Background(), user)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	second, err := manager.Generate(context.Background(), user)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if store.calls != 2 {
		t.Errorf("Expected 2 store updates, got %d", store.calls)
	}
	if user.ResetCode != second {
		t.Errorf("Expected latest code %q on user, got %q", second, user.ResetCode)
	}
	_ = first
}

func TestResetCodeManager_Validate(t *testing.T) {
	issued := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{
			name: "Just issued",
			now:  issued,
			want: true,
		},
		{
			name: "119 seconds elapsed",
			now:  issued.Add(119 * time.Second),
			want: true,
		},
		{
			name: "Exactly 2 minutes elapsed",
			now:  issued.Add(2 * time.Minute),
			want: false,
		},
		{
			name: "121 seconds elapsed",
			now:  issued.Add(121 * time.Second),
			want: false,
		},
		{
			name: "Clock moved backwards",
			now:  issued.Add(-time.Second),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := NewResetCodeManager(&recordingResetCodeStore{})
			manager.now = func() time.Time { return tt.now }

			user := &model.User{ResetCode: "1234", ResetCodeTime: issued}

			if got := manager.Validate(user, "1234"); got != tt.want {
				t.Errorf("Validate at %v = %v, want %v", tt.now.Sub(issued), got, tt.want)
			}
		})
	}
}

func TestResetCodeManager_ValidateYearBoundary(t *testing.T) {
	// One minute elapsed, but the code was issued in the previous calendar
	// year: the year-equality guard rejects it even inside the window.
	issued := time.Date(2024, 12, 31, 23, 59, 30, 0, time.UTC)
	now := time.Date(2025, 1, 1, 0, 0, 30, 0, time.UTC)

	manager := NewResetCodeManager(&recordingResetCodeStore{})
	manager.now = func() time.Time { return now }

	user := &model.User{ResetCode: "1234", ResetCodeTime: issued}

	if manager.Validate(user, "1234") {
		t.Error("Expected validation to fail across a year boundary")
	}
}
