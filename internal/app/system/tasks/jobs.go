// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"
)

// MissedCheckInJob wraps m as an hourly Job.
func MissedCheckInJob(m *MissedCheckIns) Job {
	return Job{
		Name:     "missed-checkin-alerts",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			_, err := m.Run(ctx)
			return err
		},
	}
}
