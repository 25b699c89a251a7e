// internal/app/features/pirs/list.go
package pirs

import (
	"context"
	"net/http"

	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/normalize"
	"github.com/glrs/lighthouse/internal/app/system/paging"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// pirSummary is one row of the caseload listing. Contact details stay on
// the detail endpoint.
type pirSummary struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	Status       string  `json:"status"`
	CoachID      *string `json:"coach_id,omitempty"`
	TimeZone     string  `json:"time_zone,omitempty"`
	SobrietyDate *string `json:"sobriety_date,omitempty"`
}

type listResponse struct {
	PIRs []pirSummary `json:"pirs"`
	paging.Page
	PrevCursor string `json:"prev_cursor,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// ServeList handles GET /api/pirs?q=&status=&size=&after=&before=.
//
// Coaches see their own caseload and admins see every PIR. status defaults
// to active; "all" includes disabled PIRs. Results are keyset-paged on the
// sort field: pass next_cursor as after or prev_cursor as before.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	scope := pirpolicy.CanListPIRs(r)
	if !scope.CanList {
		h.ErrLog.LogForbidden(w, r, "caller may not list pirs")
		return
	}

	status := normalize.Status(r.URL.Query().Get("status"))
	switch status {
	case "":
		status = models.StatusActive
	case "all":
		status = ""
	case models.StatusActive, models.StatusDisabled:
	default:
		jsonio.Error(w, http.StatusBadRequest, `status must be "active", "disabled" or "all"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	page := paging.FromRequest(r).Keyset()
	q := userstore.PIRQuery{
		CoachID: scope.CoachID,
		Status:  status,
		Q:       r.URL.Query().Get("q"),
		Page:    &page,
	}
	list, err := userstore.New(h.DB).SearchPIRs(ctx, q)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list pirs failed", err, "")
		return
	}

	resp := listResponse{Page: paging.Trim(&list, page)}
	sortField := q.SortField()
	resp.PrevCursor, resp.NextCursor = paging.Cursors(list,
		func(u models.User) string { return userstore.SortKey(u, sortField) },
		func(u models.User) primitive.ObjectID { return u.ID },
	)
	if !resp.HasPrev {
		resp.PrevCursor = ""
	}
	if !resp.HasNext {
		resp.NextCursor = ""
	}

	resp.PIRs = make([]pirSummary, 0, len(list))
	for _, u := range list {
		resp.PIRs = append(resp.PIRs, summarize(u))
	}
	jsonio.Write(w, http.StatusOK, resp)
}

func summarize(u models.User) pirSummary {
	s := pirSummary{
		ID:       u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Status:   u.Status,
		TimeZone: u.TimeZone,
	}
	if u.CoachID != nil {
		id := u.CoachID.Hex()
		s.CoachID = &id
	}
	if u.SobrietyDate != nil {
		d := u.SobrietyDate.UTC().Format("2006-01-02")
		s.SobrietyDate = &d
	}
	return s
}
