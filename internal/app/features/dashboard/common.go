// internal/app/features/dashboard/common.go
package dashboard

import (
	"context"
	"time"

	metricsstore "github.com/glrs/lighthouse/internal/app/store/metrics"
	"github.com/glrs/lighthouse/internal/app/system/streaks"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// dashboardData is the response for every dashboard view.
type dashboardData struct {
	Role        string              `json:"role"`
	GeneratedAt time.Time           `json:"generated_at"`
	Counts      metricsstore.Counts `json:"counts"`
	PIRs        []pirRow            `json:"pirs"`
}

// pirRow is one line of the caseload table.
type pirRow struct {
	ID            primitive.ObjectID  `json:"id"`
	FullName      string              `json:"full_name"`
	CoachID       *primitive.ObjectID `json:"coach_id,omitempty"`
	CurrentStreak int                 `json:"current_streak"`
	LongestStreak int                 `json:"longest_streak"`
	LastCheckIn   string              `json:"last_check_in,omitempty"`
	Compliance7   float64             `json:"compliance_7d"`
	Compliance30  float64             `json:"compliance_30d"`
	DaysSober     *int                `json:"days_sober,omitempty"`
}

// buildRows computes a row per PIR, preserving the input order.
func (h *Handler) buildRows(ctx context.Context, pirs []models.User, now time.Time) ([]pirRow, error) {
	rows := make([]pirRow, len(pirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rowConcurrency)
	for i := range pirs {
		i := i
		g.Go(func() error {
			p := pirs[i]
			st, err := metricsstore.FetchPIRStats(gctx, h.DB, p, now, h.DefaultLoc)
			if err != nil {
				return err
			}
			row := pirRow{
				ID:            p.ID,
				FullName:      p.FullName,
				CoachID:       p.CoachID,
				CurrentStreak: st.Streak.Current,
				LongestStreak: st.Streak.Longest,
				Compliance7:   st.Compliance7,
				Compliance30:  st.Compliance30,
				DaysSober:     st.DaysSober,
			}
			if st.Streak.LastDay != nil {
				row.LastCheckIn = st.Streak.LastDay.Format(streaks.DayLayout)
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}
