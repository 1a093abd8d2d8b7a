// file: internals/helpers/dbtime/time_policy.go
package dbtime

import (
	"fmt"
	"strings"
	"time"

	"lingoschool_backend/internals/helpers/apperror"
)

// Policy: satu aturan zona untuk semua perbandingan deadline & window ujian.
// Waktu di DB selalu instant absolut (UTC); input tanpa offset dibaca di zona sekolah.
type Policy struct {
	Location *time.Location
	Now      func() time.Time
}

func NewPolicy(loc *time.Location) *Policy {
	if loc == nil {
		loc = time.UTC
	}
	return &Policy{Location: loc, Now: time.Now}
}

// CurrentTime: sekarang, dalam zona sekolah.
func (p *Policy) CurrentTime() time.Time {
	return p.Now().In(p.Location)
}

func (p *Policy) InSchool(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(p.Location)
}

func (p *Policy) InSchoolPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := p.InSchool(*t)
	return &v
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseClientTime menerima RFC3339 (ber-offset) atau format naive (zona sekolah).
// Tanggal saja ("2006-01-02") dianggap akhir hari di zona sekolah.
func (p *Policy) ParseClientTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, p.Location); err == nil {
			return t.UTC(), nil
		}
	}
	if d, err := time.ParseInLocation("2006-01-02", s, p.Location); err == nil {
		return d.Add(24*time.Hour - time.Second).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

// ParseClientTimePtr: nil/"" → nil.
func (p *Policy) ParseClientTimePtr(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := p.ParseClientTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CheckDeadline: lolos bila tidak ada deadline atau now <= deadline.
func (p *Policy) CheckDeadline(deadline *time.Time) error {
	if deadline == nil || deadline.IsZero() {
		return nil
	}
	if p.Now().After(*deadline) {
		return apperror.DeadlineExceeded(p.InSchool(*deadline))
	}
	return nil
}

// CheckWindow: batas start & end inklusif.
func (p *Policy) CheckWindow(start, end time.Time) error {
	now := p.Now()
	if now.Before(start) {
		return apperror.ExamNotStarted(p.InSchool(start))
	}
	if now.After(end) {
		return apperror.ExamExpired(p.InSchool(end))
	}
	return nil
}
