package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/glrs/lighthouse/internal/app/system/normalize"
	"github.com/glrs/lighthouse/internal/app/system/paging"
	"github.com/glrs/lighthouse/internal/app/system/search"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotPIR is returned when a PIR-only operation targets another role.
	ErrNotPIR = errors.New("user is not a pir")
	// ErrBadTimeZone is returned for a time_zone that is not an IANA zone.
	ErrBadTimeZone = errors.New("time_zone is not a valid IANA zone")

	errBadRole   = errors.New(`role must be "pir"|"coach"|"admin"`)
	errBadStatus = errors.New(`status must be "active"|"disabled"`)
)

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetPIR loads a user by ObjectID, returning mongo.ErrNoDocuments unless the
// user exists and is a PIR.
func (s *Store) GetPIR(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "role": models.RolePIR}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	u.Status = normalize.Status(u.Status)
	if u.Status == "" {
		u.Status = models.StatusActive
	}

	if !models.ValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	if u.Status != models.StatusActive && u.Status != models.StatusDisabled {
		return models.User{}, errBadStatus
	}
	if u.TimeZone != "" {
		if u.TimeZone = normalize.TimeZone(u.TimeZone); u.TimeZone == "" {
			return models.User{}, ErrBadTimeZone
		}
	}
	if u.Role != models.RolePIR {
		u.CoachID = nil
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds the self-editable profile fields. Nil fields are left
// unchanged. Phone must already be encrypted by the caller.
type ProfileUpdate struct {
	FullName     *string
	TimeZone     *string
	SobrietyDate *time.Time
	Phone        *string

	// ClearSobrietyDate removes the stored date. It wins over SobrietyDate.
	ClearSobrietyDate bool
}

// UpdateProfile applies upd to the user. Returns mongo.ErrNoDocuments if the
// user does not exist.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.TimeZone != nil {
		tz := normalize.TimeZone(*upd.TimeZone)
		if tz == "" && *upd.TimeZone != "" {
			return ErrBadTimeZone
		}
		set["time_zone"] = tz
	}
	update := bson.M{"$set": set}
	switch {
	case upd.ClearSobrietyDate:
		update["$unset"] = bson.M{"sobriety_date": ""}
	case upd.SobrietyDate != nil:
		set["sobriety_date"] = upd.SobrietyDate.UTC()
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetStatus enables or disables a user.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	status = normalize.Status(status)
	if status != models.StatusActive && status != models.StatusDisabled {
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetRole changes a user's role. Leaving the pir role drops coach_id.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	if !models.ValidRole(role) {
		return errBadRole
	}
	update := bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}}
	if role != models.RolePIR {
		update["$unset"] = bson.M{"coach_id": ""}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AssignCoach moves a PIR to a coach's caseload. Returns ErrNotPIR when the
// target is not a PIR.
func (s *Store) AssignCoach(ctx context.Context, pirID, coachID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": pirID, "role": models.RolePIR},
		bson.M{"$set": bson.M{"coach_id": coachID, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotPIR
	}
	return nil
}

// ListPIRs returns PIRs sorted by name. A nil coachID lists every PIR;
// otherwise only that coach's caseload. activeOnly skips disabled users.
func (s *Store) ListPIRs(ctx context.Context, coachID *primitive.ObjectID, activeOnly bool) ([]models.User, error) {
	filter := bson.M{"role": models.RolePIR}
	if coachID != nil {
		filter["coach_id"] = *coachID
	}
	if activeOnly {
		filter["status"] = models.StatusActive
	}

	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PIRQuery narrows SearchPIRs.
type PIRQuery struct {
	// CoachID restricts results to one caseload. Nil searches every PIR.
	CoachID *primitive.ObjectID
	// Status is active, disabled, or empty for both.
	Status string
	// Q is a name prefix, or an email prefix when it contains '@'.
	Q string
	// Page, when set, limits the result to one keyset page.
	Page *paging.Keyset
}

// SortField is the field SearchPIRs orders by for this query.
func (q PIRQuery) SortField() string {
	if search.EmailPivot(q.Q, q.Status) {
		return "email"
	}
	return "full_name_ci"
}

// SortKey returns u's value for field, for building page cursors.
func SortKey(u models.User, field string) string {
	if field == "email" {
		return u.Email
	}
	return u.FullNameCI
}

// SearchPIRs lists PIRs matching q. Results sort by name, or by email when
// the query pivots to email. With q.Page set the rows are one page in
// ascending order plus the look-ahead row; pass them to paging.Trim.
func (s *Store) SearchPIRs(ctx context.Context, q PIRQuery) ([]models.User, error) {
	filter := bson.M{"role": models.RolePIR}
	if q.CoachID != nil {
		filter["coach_id"] = *q.CoachID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}

	sortField := q.SortField()
	if sortField == "email" {
		lo, hi := search.EmailPrefix(q.Q)
		filter["email"] = bson.M{"$gte": lo, "$lt": hi}
	} else if lo, hi := search.Prefix(q.Q); lo != "" {
		elo, ehi := search.EmailPrefix(q.Q)
		filter["$or"] = bson.A{
			bson.M{"full_name_ci": bson.M{"$gte": lo, "$lt": hi}},
			bson.M{"email": bson.M{"$gte": elo, "$lt": ehi}},
		}
	}

	opts := options.Find()
	if q.Page != nil {
		q.Page.ApplyToFind(opts, sortField)
		filter = q.Page.Restrict(filter, sortField)
	} else {
		opts.SetSort(bson.D{{Key: sortField, Value: 1}, {Key: "_id", Value: 1}})
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountPIRs counts active PIRs, optionally scoped to one coach.
func (s *Store) CountPIRs(ctx context.Context, coachID *primitive.ObjectID) (int64, error) {
	filter := bson.M{"role": models.RolePIR, "status": models.StatusActive}
	if coachID != nil {
		filter["coach_id"] = *coachID
	}
	return s.c.CountDocuments(ctx, filter)
}

// All streams every user to fn in _id order. Iteration stops at the first
// error returned by fn.
func (s *Store) All(ctx context.Context, fn func(models.User) error) error {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	return cur.Err()
}
