package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"bankist.org/internal/obs"
	"bankist.org/internal/session"
	"bankist.org/internal/stream"
)

const maxBodyBytes = 1 << 16

// API is the HTTP surface of the bank page.
type API struct {
	router     chi.Router
	ctrl       *session.Controller
	stream     *stream.Stream
	version    string
	rateBurst  int
	ratePerSec int
	heartbeat  time.Duration
}

// Option customises the API.
type Option func(*API)

// WithHeartbeat sets how often an idle view stream gets a keep-alive comment.
func WithHeartbeat(d time.Duration) Option {
	return func(a *API) {
		if d > 0 {
			a.heartbeat = d
		}
	}
}

// WithRateLimit sets the per-client token bucket.
func WithRateLimit(burst, perSecond int) Option {
	return func(a *API) {
		if burst > 0 {
			a.rateBurst = burst
		}
		if perSecond > 0 {
			a.ratePerSec = perSecond
		}
	}
}

func New(ctrl *session.Controller, st *stream.Stream, version string, opts ...Option) *API {
	a := &API{
		ctrl:       ctrl,
		stream:     st,
		version:    version,
		rateBurst:  20,
		ratePerSec: 10,
		heartbeat:  15 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	// health/info
	r.Get("/healthz", a.Healthz)
	r.Get("/v1/info", a.Info)

	// Prometheus metrics
	r.Handle("/metrics", obs.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/view", a.View)
		r.Get("/stream", a.Stream)

		r.Post("/session/login", a.Login)
		r.Post("/session/logout", a.Logout)
		r.Post("/session/activity", a.Activity)
		r.Post("/session/sort", a.Sort)

		r.Post("/transfers", a.Transfer)
		r.Post("/loans", a.Loan)
		r.Post("/accounts/close", a.CloseAccount)
	})

	a.router = r
	return a
}

// Handler returns the router wrapped with the full middleware chain.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.router
	h = MaxBodyBytes(h, maxBodyBytes)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "bankist",
		"version": a.version,
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	st := a.ctrl.Status()
	body := map[string]any{
		"name":      "bankist",
		"time":      time.Now().UTC().Format(time.RFC3339),
		"version":   a.version,
		"logged_in": st.LoggedIn,
		"accounts":  len(a.ctrl.Accounts()),
		"loans": map[string]any{
			"pending":   st.PendingLoans,
			"posted":    st.LoansPosted,
			"discarded": st.LoansDiscarded,
		},
	}
	if st.LoggedIn {
		body["session_started"] = st.SessionStarted.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, body)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	body := map[string]any{"error": msg}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		body["request_id"] = rid
	}
	writeJSON(w, code, body)
}
