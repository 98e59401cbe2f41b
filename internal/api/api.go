// Package api serves transcript triage over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mortgage-triage-go/internal/logger"
	"mortgage-triage-go/internal/types"
)

const maxBodyBytes = 1 << 20

var errEmptyBatch = errors.New("transcripts must not be empty")

// Triager is the part of the pipeline the handlers need.
type Triager interface {
	ProcessText(raw string) (*types.TriageResult, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	log      *logger.Logger
	svc      Triager
	gatherer prometheus.Gatherer
}

// New creates the handlers. gatherer may be nil to skip /metrics.
func New(log *logger.Logger, svc Triager, gatherer prometheus.Gatherer) *API {
	if log == nil {
		log = logger.Nop()
	}
	if svc == nil {
		panic("api: triage service is required")
	}
	return &API{log: log.Component("api"), svc: svc, gatherer: gatherer}
}

// Router returns a chi router with every route and the standard middleware.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.requestLog)
	a.RegisterRoutes(r)
	return r
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", a.handleHealth)
	r.Post("/triage", a.handleTriage)
	r.Post("/triage/batch", a.handleBatch)
	if a.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	}
}

func (a *API) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.log.WithRequest(r).
			WithField("status", ww.Status()).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Info("request handled")
	})
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

type triageRequest struct {
	Transcript *string `json:"transcript"`
}

type batchRequest struct {
	Transcripts []string `json:"transcripts"`
}

type batchResponse struct {
	Results []*types.TriageResult `json:"results"`
	Total   int                   `json:"total"`
}

func (a *API) handleTriage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var text string
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "text/plain" {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, bodyStatus(err), "could not read body")
			return
		}
		text = string(b)
	} else {
		var req triageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, bodyStatus(err), "invalid JSON body")
			return
		}
		if req.Transcript == nil {
			writeError(w, http.StatusBadRequest, "transcript is required")
			return
		}
		text = *req.Transcript
	}

	res, err := a.svc.ProcessText(text)
	if err != nil {
		a.log.WithError(err).Error("triage failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, bodyStatus(err), "invalid JSON body")
		return
	}
	if len(req.Transcripts) == 0 {
		writeError(w, http.StatusBadRequest, errEmptyBatch.Error())
		return
	}

	out := make([]*types.TriageResult, 0, len(req.Transcripts))
	for i, text := range req.Transcripts {
		res, err := a.svc.ProcessText(text)
		if err != nil {
			a.log.WithError(err).WithField("index", i).Error("batch triage failed")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		out = append(out, res)
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: out, Total: len(out)})
}

func bodyStatus(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
