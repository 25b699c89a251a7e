// internal/app/features/resources/guides.go
package resources

import (
	"context"
	"net/http"
	"time"

	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	resourceassignstore "github.com/glrs/lighthouse/internal/app/store/resourceassign"
	resourcestore "github.com/glrs/lighthouse/internal/app/store/resources"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// guide is one entry on a Guides tab: the resource plus who put it there.
type guide struct {
	models.Resource
	Note         string             `json:"note,omitempty"`
	AssignedByID primitive.ObjectID `json:"assigned_by_id"`
	AssignedAt   time.Time          `json:"assigned_at"`
}

type guidesResponse struct {
	Guides []guide `json:"guides"`
}

// ServeAssigned handles GET /api/resources/assigned for the signed-in PIR.
func (h *Handler) ServeAssigned(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.guidesFor(ctx, uid, false)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list guides failed", err, "")
		return
	}
	jsonio.Write(w, http.StatusOK, guidesResponse{Guides: list})
}

// guidesFor joins a PIR's assignments with the library, newest first.
// Disabled guides are dropped unless includeDisabled is set; assignments
// whose resource was removed are always dropped.
func (h *Handler) guidesFor(ctx context.Context, userID primitive.ObjectID, includeDisabled bool) ([]guide, error) {
	assigned, err := resourceassignstore.New(h.DB).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(assigned))
	for _, a := range assigned {
		ids = append(ids, a.ResourceID)
	}
	byID, err := resourcestore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]guide, 0, len(assigned))
	for _, a := range assigned {
		res, ok := byID[a.ResourceID]
		if !ok {
			continue
		}
		if res.Status != models.StatusActive && !includeDisabled {
			continue
		}
		out = append(out, guide{
			Resource:     res,
			Note:         a.Note,
			AssignedByID: a.AssignedByID,
			AssignedAt:   a.CreatedAt,
		})
	}
	return out, nil
}
