package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"familyassets/internal/log"
)

func TestGenerateRequestID(t *testing.T) {
	re := regexp.MustCompile(`^req_[0-9a-f]{16}$`)
	a, b := GenerateRequestID(), GenerateRequestID()
	if !re.MatchString(a) || a == b {
		t.Fatalf("unexpected ids %q %q", a, b)
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Output: &buf})
	m := NewMiddleware(func(*http.Request) string { return "192.0.2.1" }, logger)

	var seenID string
	var seenLogger *log.Logger
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		seenLogger = log.FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ui/assets/x/edit", nil))

	if seenID == "" || rr.Header().Get(RequestIDHeader) != seenID {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seenID, rr.Header().Get(RequestIDHeader))
	}
	if seenLogger == nil || seenLogger.Component() != log.ComponentHTTP {
		t.Fatalf("request logger not in context")
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status_code=404") || !strings.Contains(out, seenID) {
		t.Fatalf("unexpected log output %q", out)
	}
	if m.GetMetrics().TotalRequests != 1 {
		t.Fatalf("expected one request counted")
	}
}
