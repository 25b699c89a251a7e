// internal/app/system/tasks/missedcheckin.go
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/glrs/lighthouse/internal/app/store/activity"
	alertstore "github.com/glrs/lighthouse/internal/app/store/alerts"
	checkinstore "github.com/glrs/lighthouse/internal/app/store/checkins"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/streaks"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MissedCheckIns raises a missed_check_in alert for every active PIR whose
// streak has lapsed and who has not checked in for Threshold. A PIR who
// never checked in is measured from account creation. At most one
// unresolved alert of that source exists per PIR.
type MissedCheckIns struct {
	Users      *userstore.Store
	CheckIns   *checkinstore.Store
	Alerts     *alertstore.Store
	Activity   *activity.Store
	Threshold  time.Duration
	DefaultLoc *time.Location
	Log        *zap.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Run scans the caseload once and returns how many alerts were raised.
// Per-PIR failures are logged and skipped.
func (m *MissedCheckIns) Run(ctx context.Context) (int, error) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	t := now().UTC()
	runID := uuid.NewString()

	pirs, err := m.Users.ListPIRs(ctx, nil, true)
	if err != nil {
		return 0, fmt.Errorf("list pirs: %w", err)
	}

	raised := 0
	for _, u := range pirs {
		ok, err := m.check(ctx, u, t, runID)
		if err != nil {
			m.Log.Warn("missed check-in scan failed for pir",
				zap.String("run_id", runID),
				zap.String("user_id", u.ID.Hex()),
				zap.Error(err))
			continue
		}
		if ok {
			raised++
		}
	}

	if raised > 0 {
		m.Log.Info("missed check-in alerts raised",
			zap.String("run_id", runID),
			zap.Int("count", raised),
			zap.Int("scanned", len(pirs)))
	}
	return raised, nil
}

func (m *MissedCheckIns) check(ctx context.Context, u models.User, now time.Time, runID string) (bool, error) {
	last, err := m.CheckIns.Last(ctx, u.ID)
	if err != nil {
		return false, err
	}
	since := u.CreatedAt
	if last != nil {
		since = last.CreatedAt
	}
	if now.Sub(since) < m.Threshold {
		return false, nil
	}

	if last != nil {
		days, err := m.CheckIns.LocalDates(ctx, u.ID)
		if err != nil {
			return false, err
		}
		loc := u.Location(m.DefaultLoc)
		runs := streaks.Runs(streaks.ParseDays(days))
		if streaks.Current(runs, streaks.Day(now, loc)) > 0 {
			return false, nil
		}
	}

	open, err := m.Alerts.HasUnresolved(ctx, u.ID, models.AlertSourceMissedCheckIn)
	if err != nil || open {
		return false, err
	}

	hours := int(now.Sub(since).Hours())
	alert, err := m.Alerts.Create(ctx, models.CrisisAlert{
		UserID:   u.ID,
		CoachID:  u.CoachID,
		Source:   models.AlertSourceMissedCheckIn,
		Severity: models.SeverityHigh,
		Message:  fmt.Sprintf("No check-in for %d hours", hours),
	})
	if err != nil {
		return false, err
	}

	if err := m.Activity.Record(ctx, u.ID, activity.EventAlertRaised, runID, &alert.ID, map[string]any{
		"source": models.AlertSourceMissedCheckIn,
		"hours":  hours,
	}); err != nil {
		m.Log.Warn("failed to record activity", zap.Error(err))
	}
	return true, nil
}
