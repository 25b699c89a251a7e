// Package metricsstore computes the counters and per-PIR progress numbers
// shown on dashboards and stats endpoints.
package metricsstore

import (
	"context"
	"time"

	alertstore "github.com/glrs/lighthouse/internal/app/store/alerts"
	assignmentstore "github.com/glrs/lighthouse/internal/app/store/assignments"
	checkinstore "github.com/glrs/lighthouse/internal/app/store/checkins"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/streaks"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compliance windows, in days.
const (
	WeekWindow  = 7
	MonthWindow = 30
)

// Counts is the set of totals shown at the top of the dashboard.
type Counts struct {
	PIRs               int64 `json:"pirs"`
	OpenAlerts         int64 `json:"open_alerts"`
	CheckInsToday      int64 `json:"check_ins_today"`
	PendingAssignments int64 `json:"pending_assignments"`
}

// FetchDashboardCounts returns the dashboard totals. A nil coachID counts
// across every PIR; otherwise only that coach's caseload. "Today" starts at
// midnight in loc.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database, coachID *primitive.ObjectID, now time.Time, loc *time.Location) Counts {
	var out Counts
	if loc == nil {
		loc = time.UTC
	}

	if n, err := userstore.New(db).CountPIRs(ctx, coachID); err == nil {
		out.PIRs = n
	}
	if n, err := alertstore.New(db).CountOpen(ctx, coachID); err == nil {
		out.OpenAlerts = n
	}
	if n, err := assignmentstore.New(db).CountPending(ctx, coachID); err == nil {
		out.PendingAssignments = n
	}

	var caseload []primitive.ObjectID
	if coachID != nil {
		pirs, err := userstore.New(db).ListPIRs(ctx, coachID, false)
		if err != nil {
			return out
		}
		caseload = make([]primitive.ObjectID, 0, len(pirs))
		for _, p := range pirs {
			caseload = append(caseload, p.ID)
		}
		if len(caseload) == 0 {
			return out
		}
	}

	y, m, d := now.In(loc).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if n, err := checkinstore.New(db).CountSince(ctx, midnight, caseload); err == nil {
		out.CheckInsToday = n
	}

	return out
}

// PIRStats is one PIR's progress picture.
type PIRStats struct {
	UserID primitive.ObjectID `json:"user_id"`
	Streak streaks.Summary    `json:"streak"`

	Compliance7  float64 `json:"compliance_7d"`
	Compliance30 float64 `json:"compliance_30d"`

	AssignmentsCompleted int64   `json:"assignments_completed_30d"`
	AssignmentsDue       int64   `json:"assignments_due_30d"`
	AssignmentCompliance float64 `json:"assignment_compliance_30d"`

	DaysSober *int `json:"days_sober,omitempty"`
}

// FetchPIRStats computes streaks and compliance for u as of now, using the
// PIR's own time zone (def when unset).
//
// Check-in compliance is days with a check-in over the trailing 7 and 30
// days, today included. Assignment compliance is completed ÷ due over
// assignments due in the trailing 30 days.
func FetchPIRStats(ctx context.Context, db *mongo.Database, u models.User, now time.Time, def *time.Location) (PIRStats, error) {
	loc := u.Location(def)
	today := streaks.Day(now, loc)

	days, err := checkinstore.New(db).LocalDates(ctx, u.ID)
	if err != nil {
		return PIRStats{}, err
	}
	parsed := streaks.ParseDays(days)

	out := PIRStats{UserID: u.ID}
	out.Streak = streaks.SummarizeDays(parsed, today, MonthWindow)
	out.Compliance30 = out.Streak.WindowRate
	out.Compliance7 = streaks.SummarizeDays(parsed, today, WeekWindow).WindowRate

	start := now.AddDate(0, 0, -MonthWindow)
	completed, due, err := assignmentstore.New(db).Compliance(ctx, u.ID, start, now)
	if err != nil {
		return PIRStats{}, err
	}
	out.AssignmentsCompleted = completed
	out.AssignmentsDue = due
	out.AssignmentCompliance = streaks.ComplianceRate(int(completed), int(due))

	if u.SobrietyDate != nil {
		n := DaysSober(*u.SobrietyDate, now, loc)
		out.DaysSober = &n
	}
	return out, nil
}

// DaysSober is the number of whole calendar days from the sobriety date to
// today in loc. The sobriety date itself is day 0; future dates give 0.
func DaysSober(sobriety, now time.Time, loc *time.Location) int {
	// The sobriety date is a calendar date stored at UTC midnight.
	start := streaks.Day(sobriety, time.UTC)
	n := streaks.ExpectedDays(start, streaks.Day(now, loc)) - 1
	if n < 0 {
		return 0
	}
	return n
}
