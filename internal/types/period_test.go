package types

import (
	"testing"
	"time"
)

func TestCurrentBillingPeriod(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want BillingPeriod
	}{
		{
			name: "mid month",
			now:  time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC),
			want: "2026-08",
		},
		{
			name: "month boundary rolls in UTC",
			now:  time.Date(2026, time.August, 31, 23, 59, 59, 0, time.UTC),
			want: "2026-08",
		},
		{
			name: "non UTC wall clock normalized",
			now:  time.Date(2026, time.September, 1, 2, 0, 0, 0, time.FixedZone("IST", 5*60*60)),
			want: "2026-08",
		},
		{
			name: "year boundary",
			now:  time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: "2027-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentBillingPeriod(tt.now); got != tt.want {
				t.Errorf("CurrentBillingPeriod(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestParseBillingPeriod(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{input: "2026-08"},
		{input: "1999-01"},
		{input: "2026-13", wantErr: true},
		{input: "2026-8", wantErr: true},
		{input: "202608", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseBillingPeriod(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseBillingPeriod(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestPeriodKeyRoundTrip(t *testing.T) {
	key := PeriodKey("tenant-1", "2026-08")
	if key != "tenant-1#2026-08" {
		t.Errorf("PeriodKey = %q", key)
	}
	if got := PeriodFromKey(key); got != "2026-08" {
		t.Errorf("PeriodFromKey(%q) = %q", key, got)
	}
	if prefix := PeriodKeyPrefix("tenant-1"); prefix != "tenant-1#" {
		t.Errorf("PeriodKeyPrefix = %q", prefix)
	}
}

func TestDeriveTenantStatus(t *testing.T) {
	tests := []struct {
		status SubscriptionStatus
		want   TenantStatus
	}{
		{SubscriptionStatusActive, TenantStatusActive},
		{SubscriptionStatusTrialing, TenantStatusActive},
		{SubscriptionStatusPastDue, TenantStatusActive},
		{SubscriptionStatusCanceled, TenantStatusSuspended},
		{SubscriptionStatusUnpaid, TenantStatusSuspended},
		{SubscriptionStatusNone, TenantStatusActive},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := DeriveTenantStatus(tt.status); got != tt.want {
				t.Errorf("DeriveTenantStatus(%s) = %s, want %s", tt.status, got, tt.want)
			}
		})
	}
}
