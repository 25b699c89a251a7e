// internal/app/features/resources/library.go
package resources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	resourcestore "github.com/glrs/lighthouse/internal/app/store/resources"
	"github.com/glrs/lighthouse/internal/app/system/htmlsanitize"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/limits"
	"github.com/glrs/lighthouse/internal/app/system/normalize"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type libraryResponse struct {
	Resources []models.Resource `json:"resources"`
}

type createRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Kind     string `json:"kind"`
	URL      string `json:"url"`
	Summary  string `json:"summary"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// ServeLibrary handles GET /api/resources?kind=&category=. Only active
// guides are listed unless staff pass all=true.
func (h *Handler) ServeLibrary(w http.ResponseWriter, r *http.Request) {
	_, caller, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	f := resourcestore.Filter{
		Kind:     strings.ToLower(normalize.QueryParam(q.Get("kind"))),
		Category: normalize.QueryParam(q.Get("category")),
	}
	if f.Kind != "" && !models.ValidResourceKind(f.Kind) {
		jsonio.Error(w, http.StatusBadRequest, resourcestore.ErrBadKind.Error())
		return
	}
	if q.Get("all") == "true" && caller.Role != models.RolePIR {
		f.IncludeDisabled = true
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := resourcestore.New(h.DB).List(ctx, f)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list resources failed", err, "")
		return
	}
	if list == nil {
		list = []models.Resource{}
	}
	jsonio.Write(w, http.StatusOK, libraryResponse{Resources: list})
}

// HandleCreate handles POST /api/resources.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode resource failed", err, err.Error())
		return
	}
	title := htmlsanitize.Text(req.Title)
	summary := htmlsanitize.Text(req.Summary)
	if utf8.RuneCountInString(title) > limits.MaxTitleLength {
		jsonio.Error(w, http.StatusBadRequest, fmt.Sprintf("title must be at most %d characters", limits.MaxTitleLength))
		return
	}
	if utf8.RuneCountInString(summary) > limits.MaxDescriptionLength {
		jsonio.Error(w, http.StatusBadRequest, fmt.Sprintf("summary must be at most %d characters", limits.MaxDescriptionLength))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := resourcestore.New(h.DB).Create(ctx, models.Resource{
		Title:       title,
		Category:    htmlsanitize.Text(req.Category),
		Kind:        req.Kind,
		URL:         strings.TrimSpace(req.URL),
		Summary:     summary,
		CreatedByID: callerID,
	})
	switch {
	case errors.Is(err, resourcestore.ErrTitleRequired),
		errors.Is(err, resourcestore.ErrBadURL),
		errors.Is(err, resourcestore.ErrBadKind):
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, resourcestore.ErrDuplicateTitle):
		jsonio.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "create resource failed", err, "")
		return
	}

	h.Log.Info("resource created",
		zap.String("resource_id", res.ID.Hex()),
		zap.String("by", callerID.Hex()))
	jsonio.Write(w, http.StatusCreated, res)
}

// HandleSetStatus handles PUT /api/resources/{resourceID}/status.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := jsonio.ObjectIDParam(r, "resourceID")
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "invalid resource id")
		return
	}
	var req statusRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode status failed", err, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := resourcestore.New(h.DB).SetStatus(ctx, id, normalize.Status(req.Status))
	switch {
	case errors.Is(err, resourcestore.ErrBadStatus):
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		jsonio.Error(w, http.StatusNotFound, "resource not found")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "set resource status failed", err, "")
		return
	}
	jsonio.Write(w, http.StatusOK, res)
}
