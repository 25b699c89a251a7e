// Package addressmigrate backfills coordinates for meeting addresses.
package addressmigrate

import (
	"context"
	"errors"
	"time"

	meetingstore "github.com/glrs/lighthouse/internal/app/store/meetings"
	"github.com/glrs/lighthouse/internal/app/system/geocode"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Geocoder resolves one address line.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (geocode.Result, error)
}

// Options controls a migration run.
type Options struct {
	BatchSize int           // meetings per page; defaults to 50
	Pause     time.Duration // sleep between pages
	DryRun    bool          // geocode but write nothing
	Force     bool          // revisit meetings that already have a status
}

// Result counts outcomes. Every scanned meeting lands in exactly one bucket.
type Result struct {
	Scanned  int `json:"scanned" yaml:"scanned"`
	Geocoded int `json:"geocoded" yaml:"geocoded"`
	NotFound int `json:"not_found" yaml:"not_found"`
	Failed   int `json:"failed" yaml:"failed"`
	Skipped  int `json:"skipped" yaml:"skipped"` // no usable address
	Batches  int `json:"batches" yaml:"batches"`
}

// Migrator walks the meeting collection in _id order.
type Migrator struct {
	meetings *meetingstore.Store
	geo      Geocoder
	log      *zap.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// New creates a Migrator.
func New(db *mongo.Database, geo Geocoder, logger *zap.Logger) *Migrator {
	return &Migrator{
		meetings: meetingstore.New(db),
		geo:      geo,
		log:      logger,
		Now:      time.Now,
	}
}

// Run geocodes every eligible meeting. Failures are logged and recorded on
// the meeting; they are not retried. Run stops early only when ctx ends or
// the database cannot be read.
func (m *Migrator) Run(ctx context.Context, opts Options) (Result, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	var res Result
	after := primitive.NilObjectID

	for {
		batch, err := m.meetings.NextForGeocoding(ctx, after, opts.Force, int64(opts.BatchSize))
		if err != nil {
			return res, err
		}
		if len(batch) == 0 {
			break
		}
		if res.Batches > 0 && opts.Pause > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(opts.Pause):
			}
		}
		res.Batches++

		for _, mt := range batch {
			after = mt.ID
			if err := m.migrateOne(ctx, mt, opts.DryRun, &res); err != nil {
				return res, err
			}
		}

		m.log.Info("address batch done",
			zap.Int("batch", res.Batches),
			zap.Int("scanned", res.Scanned),
			zap.Int("geocoded", res.Geocoded),
			zap.Int("not_found", res.NotFound),
			zap.Int("failed", res.Failed),
			zap.Bool("dry_run", opts.DryRun))

		if len(batch) < opts.BatchSize {
			break
		}
	}
	return res, nil
}

// migrateOne only returns an error when the run must stop.
func (m *Migrator) migrateOne(ctx context.Context, mt models.Meeting, dryRun bool, res *Result) error {
	res.Scanned++
	log := m.log.With(zap.String("meeting_id", mt.ID.Hex()), zap.String("name", mt.Name))

	line := mt.Address.OneLine()
	if line == "" {
		res.Skipped++
		log.Warn("meeting has no address")
		return m.write(ctx, mt.ID, "", nil, models.GeocodeNotFound, dryRun)
	}

	r, err := m.geo.Geocode(ctx, line)
	switch {
	case err == nil:
		res.Geocoded++
		pt := r.Point
		return m.write(ctx, mt.ID, line, &pt, models.GeocodeOK, dryRun)
	case errors.Is(err, geocode.ErrNotFound):
		res.NotFound++
		log.Warn("address not found", zap.String("address", line))
		return m.write(ctx, mt.ID, line, nil, models.GeocodeNotFound, dryRun)
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		res.Failed++
		log.Error("geocode failed", zap.String("address", line), zap.Error(err))
		return m.write(ctx, mt.ID, line, nil, models.GeocodeError, dryRun)
	}
}

func (m *Migrator) write(ctx context.Context, id primitive.ObjectID, formatted string, pt *models.GeoPoint, status string, dryRun bool) error {
	if dryRun {
		return nil
	}
	if err := m.meetings.SetGeocode(ctx, id, formatted, pt, status, m.Now()); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.log.Error("failed to save geocode result",
			zap.String("meeting_id", id.Hex()), zap.Error(err))
	}
	return nil
}
