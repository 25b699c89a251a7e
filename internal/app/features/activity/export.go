// internal/app/features/activity/export.go
package activity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"go.uber.org/zap"
)

var errRangeOrder = errors.New("end must not be before start")

// ServeEventsCSV handles GET /api/pirs/{id}/activity/export.csv?start=&end=.
func (h *Handler) ServeEventsCSV(w http.ResponseWriter, r *http.Request) {
	pir, ok := h.loadPIR(w, r)
	if !ok {
		return
	}
	start, end, err := h.parseRange(r)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "activity CSV export")
	defer cancel()

	events, err := h.Activity.GetByUserInTimeRange(ctx, pir.ID, start, end)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "fetch events for export failed", err, "")
		return
	}

	filename := fmt.Sprintf("activity_%s_%s_%s.csv", pir.ID.Hex(), start.Format("20060102"), end.Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	// UTF-8 BOM for Excel
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		h.Log.Error("CSV write failed (BOM)", zap.Error(err))
		return
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	defer cw.Flush()

	if err := cw.Write([]string{"timestamp", "event_type", "subject_id", "request_id", "details"}); err != nil {
		h.Log.Error("CSV write failed (header)", zap.Error(err))
		return
	}
	for _, e := range events {
		subject := ""
		if e.SubjectID != nil {
			subject = e.SubjectID.Hex()
		}
		if err := cw.Write([]string{
			e.Timestamp.UTC().Format(time.RFC3339),
			e.EventType,
			subject,
			e.RequestID,
			sanitizeCSVField(formatDetails(e.Details)),
		}); err != nil {
			h.Log.Error("CSV write failed (row)", zap.Error(err))
			return
		}
	}

	h.Log.Info("activity CSV exported", zap.String("pir_id", pir.ID.Hex()), zap.Int("rows", len(events)))
}

// formatDetails renders details as key=value pairs in key order.
func formatDetails(d map[string]any) string {
	if len(d) == 0 {
		return ""
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, d[k])
	}
	return strings.Join(parts, " ")
}

// sanitizeCSVField prevents spreadsheet formula injection.
func sanitizeCSVField(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}
