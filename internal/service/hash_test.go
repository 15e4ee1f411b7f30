package service

import (
	"testing"
)

func TestHashService_Deterministic(t *testing.T) {
	hasher := NewHashService()

	inputs := []string{"password123", "", "p", "Пароль", "correct horse battery staple"}

	for _, input := range inputs {
		first := hasher.Hash(input)
		second := hasher.Hash(input)

		if first != second {
			t.Errorf("Expected identical digests for %q, got %s and %s", input, first, second)
		}

		if len(first) != 64 {
			t.Errorf("Expected 64 hex characters for %q, got %d", input, len(first))
		}
	}
}

func TestHashService_DistinctInputs(t *testing.T) {
	hasher := NewHashService()

	digests := map[string]string{}
	inputs := []string{"password123", "password124", "Password123", "password123 "}

	for _, input := range inputs {
		digest := hasher.Hash(input)
		if prev, ok := digests[digest]; ok {
			t.Errorf("Inputs %q and %q produced the same digest", prev, input)
		}
		digests[digest] = input
	}
}

func TestHashService_Verify(t *testing.T) {
	hasher := NewHashService()

	tests := []struct {
		name      string
		plaintext string
		digest    string
		want      bool
	}{
		{
			name:      "Matching password",
			plaintext: "password123",
			digest:    hasher.Hash("password123"),
			want:      true,
		},
		{
			name:      "Wrong password",
			plaintext: "password124",
			digest:    hasher.Hash("password123"),
			want:      false,
		},
		{
			name:      "Plaintext against plaintext",
			plaintext: "password123",
			digest:    "password123",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasher.Verify(tt.plaintext, tt.digest); got != tt.want {
				t.Errorf("Verify(%q) = %v, want %v", tt.plaintext, got, tt.want)
			}
		})
	}
}
