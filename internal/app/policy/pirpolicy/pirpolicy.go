// Package pirpolicy decides which PIRs a signed-in user may see and act on.
//
// Authorization rules:
//   - Admins can view and manage every PIR
//   - Coaches can view and manage the PIRs on their own caseload
//   - A PIR can view only themself
package pirpolicy

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ListScope describes which PIRs the caller may list.
type ListScope struct {
	// CanList is false for callers that may not list PIRs at all.
	CanList bool
	// CoachID restricts the listing to one caseload. Nil means every PIR.
	CoachID *primitive.ObjectID
}

// CanListPIRs returns the caller's listing scope.
func CanListPIRs(r *http.Request) ListScope {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return ListScope{}
	}
	switch u.Role {
	case models.RoleAdmin:
		return ListScope{CanList: true}
	case models.RoleCoach:
		id, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return ListScope{}
		}
		return ListScope{CanList: true, CoachID: &id}
	}
	return ListScope{}
}

// CanViewPIR reports whether the caller may see pir's records.
func CanViewPIR(r *http.Request, pir *models.User) bool {
	u, ok := auth.CurrentUser(r)
	if !ok || pir == nil {
		return false
	}
	switch u.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCoach:
		return pir.CoachID != nil && pir.CoachID.Hex() == u.ID
	case models.RolePIR:
		return pir.ID.Hex() == u.ID
	}
	return false
}

// CheckPIRAccess loads the PIR and checks the caller may see them.
//
// Returns:
//   - (pir, true, nil) if the caller can access the PIR
//   - (pir, false, nil) if the PIR exists but the caller cannot access it
//   - (nil, false, nil) if no PIR has that ID
//   - (nil, false, err) on database error
func CheckPIRAccess(ctx context.Context, users *userstore.Store, r *http.Request, pirID primitive.ObjectID) (*models.User, bool, error) {
	pir, err := users.GetPIR(ctx, pirID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return pir, CanViewPIR(r, pir), nil
}

// Self returns the caller's ObjectID. ok is false without a valid session.
func Self(r *http.Request) (primitive.ObjectID, *auth.SessionUser, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, nil, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID, nil, false
	}
	return id, u, true
}
