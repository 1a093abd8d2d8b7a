package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingoschool_backend/internals/helpers/apperror"
)

var wib = time.FixedZone("UTC+7", 7*3600)

func fixedPolicy(now time.Time) *Policy {
	p := NewPolicy(wib)
	p.Now = func() time.Time { return now }
	return p
}

func TestParseClientTime(t *testing.T) {
	p := NewPolicy(wib)
	want := time.Date(2026, 1, 30, 16, 59, 59, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-01-30T23:59:59+07:00", want},
		{"2026-01-30T16:59:59Z", want},
		{"2026-01-30T23:59:59", want},
		{"2026-01-30 23:59:59", want},
		{"2026-01-30", want},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := p.ParseClientTime(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := p.ParseClientTime("30/01/2026")
	assert.Error(t, err)
}

func TestCheckDeadlineBoundary(t *testing.T) {
	deadline := time.Date(2026, 1, 30, 23, 59, 59, 0, wib)

	tests := []struct {
		name    string
		now     time.Time
		wantErr bool
	}{
		{"one second before", deadline.Add(-time.Second), false},
		{"exactly at", deadline, false},
		{"one second after", deadline.Add(time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fixedPolicy(tt.now).CheckDeadline(&deadline)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			ae, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeDeadlineExceeded, ae.Code)
			assert.True(t, deadline.Equal(ae.Details["deadline"].(time.Time)))
		})
	}

	assert.NoError(t, fixedPolicy(deadline.Add(time.Hour)).CheckDeadline(nil))
}

func TestCheckWindowBoundary(t *testing.T) {
	start := time.Date(2026, 2, 2, 8, 0, 0, 0, wib)
	end := start.Add(45 * time.Minute)

	tests := []struct {
		name     string
		now      time.Time
		wantCode string
	}{
		{"before start", start.Add(-time.Second), apperror.CodeExamNotStarted},
		{"at start", start, ""},
		{"inside", start.Add(20 * time.Minute), ""},
		{"at end", end, ""},
		{"after end", end.Add(time.Second), apperror.CodeExamExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fixedPolicy(tt.now).CheckWindow(start, end)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.HasCode(err, tt.wantCode))
		})
	}
}
