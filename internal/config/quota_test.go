package config

import (
	"testing"

	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/types"
)

func TestCeilingForTier(t *testing.T) {
	q := QuotaConfig{Ceilings: DefaultCeilings()}

	tests := []struct {
		name    string
		tier    types.SubscriptionTier
		want    int64
		wantErr bool
	}{
		{name: "free", tier: types.SubscriptionTierFree, want: 10},
		{name: "pro", tier: types.SubscriptionTierPro, want: 100},
		{name: "enterprise", tier: types.SubscriptionTierEnterprise, want: EnterpriseCeiling},
		{name: "unconfigured tier", tier: types.SubscriptionTier("platinum"), wantErr: true},
		{name: "empty tier", tier: types.SubscriptionTier(""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := q.CeilingForTier(tt.tier)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CeilingForTier(%q): expected error, got %d", tt.tier, got)
				}
				if !ierr.IsValidation(err) {
					t.Fatalf("CeilingForTier(%q): expected validation error, got %v", tt.tier, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CeilingForTier(%q): unexpected error: %v", tt.tier, err)
			}
			if got != tt.want {
				t.Fatalf("CeilingForTier(%q) = %d, want %d", tt.tier, got, tt.want)
			}
		})
	}
}

func TestQuotaConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     QuotaConfig
		wantErr bool
	}{
		{name: "defaults", cfg: QuotaConfig{Ceilings: DefaultCeilings()}},
		{name: "empty table", cfg: QuotaConfig{}, wantErr: true},
		{name: "zero ceiling", cfg: QuotaConfig{Ceilings: map[string]int64{"free": 0}}, wantErr: true},
		{name: "negative ceiling", cfg: QuotaConfig{Ceilings: map[string]int64{"free": -1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
