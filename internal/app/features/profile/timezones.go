// internal/app/features/profile/timezones.go
package profile

import (
	"net/http"

	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/timezones"
)

type timeZonesResponse struct {
	Groups []timezones.ZoneGroup `json:"groups"`
}

// ServeTimeZones handles GET /api/me/timezones: the picker list with each
// zone's offset right now.
func (h *Handler) ServeTimeZones(w http.ResponseWriter, r *http.Request) {
	groups, err := timezones.Groups(h.Now())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load time zones failed", err, "")
		return
	}
	jsonio.Write(w, http.StatusOK, timeZonesResponse{Groups: groups})
}
