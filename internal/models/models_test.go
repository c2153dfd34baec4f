package models_test

import (
	"testing"

	"github.com/xaenox/marketwatch/internal/models"
)

func TestAccountCanSend(t *testing.T) {
	tests := []struct {
		name    string
		account models.Account
		limit   int
		want    bool
	}{
		{"usable under limit", models.Account{Usable: true, DailyMessages: 3}, 10, true},
		{"usable at limit", models.Account{Usable: true, DailyMessages: 10}, 10, false},
		{"unusable", models.Account{Usable: false}, 10, false},
		{"zero limit means unlimited", models.Account{Usable: true, DailyMessages: 500}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.account.CanSend(tt.limit); got != tt.want {
				t.Fatalf("CanSend(%d) = %v, want %v", tt.limit, got, tt.want)
			}
		})
	}
}
