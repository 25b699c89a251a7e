// Package dataaudit inspects the live database and reports record counts,
// per-PIR engagement, and integrity problems such as orphaned documents.
package dataaudit

import (
	"context"
	"fmt"
	"sort"
	"time"

	alertstore "github.com/glrs/lighthouse/internal/app/store/alerts"
	assignmentstore "github.com/glrs/lighthouse/internal/app/store/assignments"
	checkinstore "github.com/glrs/lighthouse/internal/app/store/checkins"
	resourceassignstore "github.com/glrs/lighthouse/internal/app/store/resourceassign"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/normalize"
	"github.com/glrs/lighthouse/internal/app/system/streaks"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Collections are counted in this order.
var Collections = []string{
	"users",
	"check_ins",
	"assignments",
	"goals",
	"meetings",
	"crisis_alerts",
	"resources",
	"resource_assignments",
	"activity_events",
}

// ComplianceWindow is the trailing day count used for PIR compliance.
const ComplianceWindow = 30

// Report is the result of one audit run.
type Report struct {
	RunID       string            `yaml:"run_id" json:"run_id"`
	GeneratedAt time.Time         `yaml:"generated_at" json:"generated_at"`
	Counts      []CollectionCount `yaml:"counts" json:"counts"`
	PIRs        []PIRReport       `yaml:"pirs" json:"pirs"`
	Orphans     []Orphan          `yaml:"orphans" json:"orphans"`
	UserIssues  []UserIssue       `yaml:"user_issues" json:"user_issues"`
}

// CollectionCount is the document count for one collection.
type CollectionCount struct {
	Name  string `yaml:"name" json:"name"`
	Count int64  `yaml:"count" json:"count"`
}

// PIRReport summarizes one PIR's check-in history.
type PIRReport struct {
	ID            string  `yaml:"id" json:"id"`
	Name          string  `yaml:"name" json:"name"`
	Email         string  `yaml:"email" json:"email"`
	Status        string  `yaml:"status" json:"status"`
	CheckIns      int64   `yaml:"check_ins" json:"check_ins"`
	CurrentStreak int     `yaml:"current_streak" json:"current_streak"`
	LongestStreak int     `yaml:"longest_streak" json:"longest_streak"`
	LastCheckIn   string  `yaml:"last_check_in,omitempty" json:"last_check_in,omitempty"`
	Compliance30  float64 `yaml:"compliance_30d" json:"compliance_30d"`
}

// Orphan is a document whose user_id matches no user.
type Orphan struct {
	Collection string `yaml:"collection" json:"collection"`
	UserID     string `yaml:"user_id" json:"user_id"`
}

// UserIssue is a user record that fails validation.
type UserIssue struct {
	ID      string `yaml:"id" json:"id"`
	Email   string `yaml:"email" json:"email"`
	Problem string `yaml:"problem" json:"problem"`
}

// Auditor runs audits against one database.
type Auditor struct {
	db          *mongo.Database
	users       *userstore.Store
	checkIns    *checkinstore.Store
	assignments *assignmentstore.Store
	alerts      *alertstore.Store
	guides      *resourceassignstore.Store
	log         *zap.Logger

	// Concurrency bounds per-PIR work. Values below one mean one.
	Concurrency int
	// DefaultLoc is used for users without a valid time zone.
	DefaultLoc *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

// New creates an Auditor with a concurrency of 8 and UTC as the default zone.
func New(db *mongo.Database, logger *zap.Logger) *Auditor {
	return &Auditor{
		db:          db,
		users:       userstore.New(db),
		checkIns:    checkinstore.New(db),
		assignments: assignmentstore.New(db),
		alerts:      alertstore.New(db),
		guides:      resourceassignstore.New(db),
		log:         logger,
		Concurrency: 8,
		DefaultLoc:  time.UTC,
	}
}

// Run performs a full audit.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	r := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: now().UTC(),
	}
	log := a.log.With(zap.String("run_id", r.RunID))
	log.Info("audit started")

	for _, name := range Collections {
		n, err := a.db.Collection(name).CountDocuments(ctx, bson.D{})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		r.Counts = append(r.Counts, CollectionCount{Name: name, Count: n})
	}

	var pirs []models.User
	known := make(map[primitive.ObjectID]struct{})
	err := a.users.All(ctx, func(u models.User) error {
		known[u.ID] = struct{}{}
		r.UserIssues = append(r.UserIssues, validateUser(u)...)
		if u.Role == models.RolePIR {
			pirs = append(pirs, u)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	r.PIRs, err = a.auditPIRs(ctx, pirs, r.GeneratedAt)
	if err != nil {
		return nil, err
	}

	r.Orphans, err = a.findOrphans(ctx, known)
	if err != nil {
		return nil, err
	}

	log.Info("audit finished",
		zap.Int("pirs", len(r.PIRs)),
		zap.Int("orphans", len(r.Orphans)),
		zap.Int("user_issues", len(r.UserIssues)))
	return r, nil
}

func (a *Auditor) auditPIRs(ctx context.Context, pirs []models.User, now time.Time) ([]PIRReport, error) {
	out := make([]PIRReport, len(pirs))

	limit := a.Concurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, u := range pirs {
		g.Go(func() error {
			rep, err := a.auditPIR(gctx, u, now)
			if err != nil {
				return fmt.Errorf("audit pir %s: %w", u.ID.Hex(), err)
			}
			out[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Auditor) auditPIR(ctx context.Context, u models.User, now time.Time) (PIRReport, error) {
	n, err := a.checkIns.CountByUser(ctx, u.ID)
	if err != nil {
		return PIRReport{}, err
	}
	days, err := a.checkIns.LocalDates(ctx, u.ID)
	if err != nil {
		return PIRReport{}, err
	}

	loc := u.Location(a.DefaultLoc)
	sum := streaks.SummarizeDays(streaks.ParseDays(days), streaks.Day(now, loc), ComplianceWindow)

	rep := PIRReport{
		ID:            u.ID.Hex(),
		Name:          u.FullName,
		Email:         u.Email,
		Status:        u.Status,
		CheckIns:      n,
		CurrentStreak: sum.Current,
		LongestStreak: sum.Longest,
		Compliance30:  sum.WindowRate,
	}
	if sum.LastDay != nil {
		rep.LastCheckIn = sum.LastDay.Format(streaks.DayLayout)
	}
	return rep, nil
}

func (a *Auditor) findOrphans(ctx context.Context, known map[primitive.ObjectID]struct{}) ([]Orphan, error) {
	sources := []struct {
		name string
		ids  func(context.Context) ([]primitive.ObjectID, error)
	}{
		{"check_ins", a.checkIns.UserIDs},
		{"assignments", a.assignments.UserIDs},
		{"crisis_alerts", a.alerts.UserIDs},
		{"resource_assignments", a.guides.UserIDs},
	}

	var out []Orphan
	for _, src := range sources {
		ids, err := src.ids(ctx)
		if err != nil {
			return nil, fmt.Errorf("distinct user ids in %s: %w", src.name, err)
		}
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				out = append(out, Orphan{Collection: src.name, UserID: id.Hex()})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Collection != out[j].Collection {
			return out[i].Collection < out[j].Collection
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func validateUser(u models.User) []UserIssue {
	var issues []UserIssue
	add := func(problem string) {
		issues = append(issues, UserIssue{ID: u.ID.Hex(), Email: u.Email, Problem: problem})
	}
	if !models.ValidRole(u.Role) {
		add(fmt.Sprintf("invalid role %q", u.Role))
	}
	if u.TimeZone != "" && normalize.TimeZone(u.TimeZone) == "" {
		add(fmt.Sprintf("invalid time zone %q", u.TimeZone))
	}
	if u.Role == models.RolePIR && u.CoachID == nil {
		add("pir has no coach")
	}
	return issues
}
