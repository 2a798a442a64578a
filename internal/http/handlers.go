package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"familyassets/internal/core"
	"familyassets/internal/log"
	"familyassets/internal/stats"
	"familyassets/internal/store"
)

type (
	totalsResponse struct {
		Total      string            `json:"total"`
		ByCategory map[string]string `json:"byCategory"`
		Revision   int64             `json:"revision"`
	}

	statsResponse struct {
		Count   int    `json:"count"`
		Total   string `json:"total"`
		Average string `json:"average"`
		Max     string `json:"max"`
		Min     string `json:"min"`
	}

	// exportRow is the YAML shape of one asset.
	exportRow struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Type        string `yaml:"type"`
		Amount      string `yaml:"amount"`
		Description string `yaml:"description,omitempty"`
		Date        string `yaml:"date"`
		CreatedAt   string `yaml:"createdAt"`
		UpdatedAt   string `yaml:"updatedAt,omitempty"`
	}
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().
		Header("Content-Type", "text/plain; charset=utf-8").
		BodyString("ok").
		Write(w)
}

// handleReady reports ready once templates are parsed and the storage
// backend answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "reason": "templates not loaded"})
		return
	}
	if err := s.store.Ping(r.Context()); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness ping failed", log.FieldError, err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "reason": "storage unavailable"})
		return
	}
	traffic := s.tracer.GetMetrics()
	limits := s.rateLimiter.GetMetrics()
	threats := s.detector.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"revision": s.store.Revision(),
		"uptime":   time.Since(s.startedAt).Round(time.Second).String(),
		"metrics": map[string]int64{
			"requests":            traffic.TotalRequests,
			"avg_response_us":     traffic.AverageResponseTime,
			"rate_limited_hits":   limits.TotalHits,
			"tracked_clients":     limits.ClientCount,
			"suspicious_requests": threats.SuspiciousRequests,
			"invalid_ip_attempts": threats.InvalidIPAttempts,
		},
	})
}

// handleAPIAssets lists assets as JSON. The filter parameter narrows the
// result without touching the stored filter.
func (s *Server) handleAPIAssets(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	filter := store.FilterAll
	if raw := r.URL.Query().Get("filter"); raw != "" {
		filter = store.ParseFilter(raw)
	}
	assets := snap.List(filter)
	if assets == nil {
		assets = []core.Asset{}
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) handleAPITotals(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "could not compute totals")
		return
	}

	resp := totalsResponse{
		Total:      core.FormatPlain(sum.Totals.Total),
		ByCategory: make(map[string]string, len(sum.Totals.ByCategory)),
		Revision:   s.store.Revision(),
	}
	for _, c := range core.Categories() {
		resp.ByCategory[string(c)] = core.FormatPlain(sum.Totals.Of(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "could not compute statistics")
		return
	}

	ex := sum.Extremes
	writeJSON(w, http.StatusOK, statsResponse{
		Count:   ex.Count,
		Total:   core.FormatPlain(ex.Total),
		Average: core.FormatPlain(ex.Average),
		Max:     core.FormatPlain(ex.Max),
		Min:     core.FormatPlain(ex.Min),
	})
}

func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "could not compute chart")
		return
	}

	switch r.PathValue("chart") {
	case "distribution":
		slices := sum.Distribution
		if slices == nil {
			slices = []stats.Slice{}
		}
		writeJSON(w, http.StatusOK, slices)
	case "categories":
		writeJSON(w, http.StatusOK, sum.Bars)
	case "trend":
		writeJSON(w, http.StatusOK, sum.Trend)
	default:
		writeJSONError(w, http.StatusNotFound, "unknown chart")
	}
}

// handleExport downloads the whole stored collection, ignoring the filter.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "json"
	}

	assets := s.store.Snapshot().Assets
	stamp := core.DateOf(s.store.Now()).String()

	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case "json":
		body, err = store.Encode(assets)
		contentType = "application/json"
	case "yaml", "yml":
		format = "yaml"
		body, err = yaml.Marshal(exportRows(assets))
		contentType = "application/yaml"
	default:
		BadRequestError("Unsupported export format").Write(w)
		return
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "Export failed",
			log.FieldError, err.Error(),
			log.FieldOperation, log.OpExport)
		writeServerError(w, r, "Export failed")
		return
	}

	logger.InfoContext(r.Context(), "Assets exported",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(assets),
		"format", format)

	NewHTMXResponse().
		Header("Content-Type", contentType).
		Header("Content-Disposition", fmt.Sprintf(`attachment; filename="family-assets-%s.%s"`, stamp, format)).
		Body(body).
		Write(w)
}

func exportRows(assets []core.Asset) []exportRow {
	rows := make([]exportRow, 0, len(assets))
	for _, a := range assets {
		row := exportRow{
			ID:          a.ID,
			Name:        a.Name,
			Type:        string(a.Type),
			Amount:      a.Amount.StringFixed(2),
			Description: a.Description,
			Date:        a.Date.String(),
			CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
		}
		if a.UpdatedAt != nil {
			row.UpdatedAt = a.UpdatedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return rows
}
