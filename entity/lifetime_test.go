package entity

import (
	"testing"
	"time"
)

func TestLifetime_Expiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLifetime(issued, 3_600_000)

	tests := []struct {
		name    string
		now     time.Time
		expired bool
	}{
		{"at issuance", issued, false},
		{"one ms before", issued.Add(time.Hour - time.Millisecond), false},
		{"boundary counts as expired", issued.Add(time.Hour), true},
		{"after", issued.Add(2 * time.Hour), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := l.IsExpired(tc.now); got != tc.expired {
				t.Errorf("IsExpired(%v) = %v, want %v", tc.now, got, tc.expired)
			}
		})
	}
}

func TestLifetime_ZeroTTLIsExpiredImmediately(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLifetime(issued, 0)
	if !l.IsExpired(issued) {
		t.Error("revoked lifetime must be expired at its issue instant")
	}
	if l.Remaining(issued) != 0 {
		t.Errorf("expected no remaining time, got %d", l.Remaining(issued))
	}
}

func TestLifetime_Remaining(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLifetime(issued, 60_000)
	if got := l.Remaining(issued.Add(15 * time.Second)); got != 45_000 {
		t.Errorf("expected 45000ms, got %d", got)
	}
	if got := l.Remaining(issued.Add(time.Minute + time.Second)); got != 0 {
		t.Errorf("expected 0 after expiry, got %d", got)
	}
}

func TestNewLifetime_NormalizesIssuedAt(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	l := NewLifetime(time.Date(2026, 3, 1, 21, 0, 0, 1_234_567, loc), 1)
	if l.IssuedAt.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", l.IssuedAt.Location())
	}
	if l.IssuedAt.Nanosecond() != 1_000_000 {
		t.Errorf("expected millisecond truncation, got %dns", l.IssuedAt.Nanosecond())
	}
}

func TestClientInfo_IsConfidential(t *testing.T) {
	if (&ClientInfo{}).IsConfidential() {
		t.Error("client without secret is public")
	}
	if !(&ClientInfo{ClientSecret: "s"}).IsConfidential() {
		t.Error("client with secret is confidential")
	}
}
