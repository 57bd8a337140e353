package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dashseek/internal/cache"
	"dashseek/internal/dash"
	"dashseek/internal/logger"
	"dashseek/internal/manifest"
	"dashseek/internal/metrics"
	"dashseek/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// maxBodyBytes bounds request bodies, manifests included.
const maxBodyBytes = 10 << 20

// Options wires the API to its collaborators. Cache and Client are optional:
// without a Cache every request parses its manifest, without a Client the
// manifestUrl field is rejected.
type Options struct {
	Resolver  *dash.Resolver
	Cache     *cache.ManifestCache
	Client    *dash.Client
	UserAgent string
	Logger    logger.Logger
	// Limiter throttles every route but the health and metrics endpoints.
	Limiter *rate.Limiter
}

type API struct {
	resolver  *dash.Resolver
	cache     *cache.ManifestCache
	client    *dash.Client
	userAgent string
	logger    logger.Logger
}

// New builds the HTTP handler.
func New(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = dash.NewResolver(log)
	}

	api := &API{
		resolver:  resolver,
		cache:     opts.Cache,
		client:    opts.Client,
		userAgent: opts.UserAgent,
		logger:    log,
	}

	router := mux.NewRouter()
	router.Use(requestID(log), instrument)

	router.HandleFunc("/healthz", api.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	limited := router.NewRoute().Subrouter()
	limited.Use(rateLimit(opts.Limiter))
	limited.HandleFunc("/resolve", api.handleResolve).Methods(http.MethodPost)
	limited.HandleFunc("/streams", api.handleStreams).Methods(http.MethodPost)

	return router
}

// manifestSource is the part of a request that names a manifest.
type manifestSource struct {
	Document    string `json:"document"`
	ManifestURL string `json:"manifestUrl"`
	// BaseURL is where an inline document was served from; it is needed for
	// absolute URLs when the manifest is not fetched by the server.
	BaseURL string `json:"baseUrl"`
}

type resolveRequest struct {
	manifestSource
	Position  *float64 `json:"position"`
	MimeType  string   `json:"mimeType"`
	Role      string   `json:"role"`
	Bandwidth uint64   `json:"bandwidth"`
	Absolute  bool     `json:"absolute"`
}

type resolveResponse struct {
	models.Segment
	AbsoluteURL string `json:"absoluteUrl,omitempty"`
}

type streamsResponse struct {
	Streams []models.Stream `json:"streams"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Position == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "position is required"})
		return
	}
	if req.Role == "" {
		req.Role = dash.DefaultRole
	}

	start := time.Now()
	segment, tree, baseURL, err := a.resolve(r, req)
	metrics.ResolutionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if kind := dash.KindOf(err); kind != dash.KindUnknown {
			metrics.ResolutionsTotal.WithLabelValues(string(kind)).Inc()
		}
		a.writeError(w, err)
		return
	}
	metrics.ResolutionsTotal.WithLabelValues("ok").Inc()

	resp := resolveResponse{Segment: segment}
	if req.Absolute {
		if baseURL == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "absolute URLs need manifestUrl or baseUrl"})
			return
		}
		period := tree.ChildrenByTag(tree.Root(), "Period")[segment.PeriodIndex]
		abs, err := dash.AbsoluteURL(baseURL, tree, period, segment.URL)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		resp.AbsoluteURL = abs
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) resolve(r *http.Request, req resolveRequest) (models.Segment, *manifest.Tree, string, error) {
	tree, baseURL, err := a.loadManifest(r, req.manifestSource)
	if err != nil {
		return models.Segment{}, nil, "", err
	}

	segment, err := a.resolver.ResolveTree(tree, dash.Request{
		Position:  *req.Position,
		MimeType:  req.MimeType,
		Role:      req.Role,
		Bandwidth: req.Bandwidth,
	})
	return segment, tree, baseURL, err
}

func (a *API) handleStreams(w http.ResponseWriter, r *http.Request) {
	var req manifestSource
	if !decodeBody(w, r, &req) {
		return
	}

	tree, _, err := a.loadManifest(r, req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	streams, err := dash.ListStreams(tree)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if streams == nil {
		streams = []models.Stream{}
	}
	writeJSON(w, http.StatusOK, streamsResponse{Streams: streams})
}

var (
	errBadRequest = errors.New("bad request")
	errFetch      = errors.New("manifest fetch failed")
)

// loadManifest returns the parsed manifest named by src and the URL that
// relative segment paths resolve against.
func (a *API) loadManifest(r *http.Request, src manifestSource) (*manifest.Tree, string, error) {
	document, baseURL := src.Document, src.BaseURL

	switch {
	case document != "" && src.ManifestURL != "":
		return nil, "", fmt.Errorf("%w: document and manifestUrl are mutually exclusive", errBadRequest)
	case document == "" && src.ManifestURL == "":
		return nil, "", fmt.Errorf("%w: one of document or manifestUrl is required", errBadRequest)
	case src.ManifestURL != "":
		if a.client == nil {
			return nil, "", fmt.Errorf("%w: fetching manifests is disabled", errBadRequest)
		}
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		body, finalURL, err := a.client.FetchManifest(ctx, src.ManifestURL, a.userAgent)
		if err != nil {
			metrics.ManifestFetchesTotal.WithLabelValues("error").Inc()
			a.logger.Errorf("Failed to fetch manifest %s (request_id=%s): %v", src.ManifestURL, r.Header.Get(RequestIDHeader), err)
			return nil, "", fmt.Errorf("%w: %v", errFetch, err)
		}
		metrics.ManifestFetchesTotal.WithLabelValues("ok").Inc()
		document, baseURL = body, finalURL
	}

	var tree *manifest.Tree
	var err error
	if a.cache != nil {
		tree, err = a.cache.Parse(document)
	} else {
		tree, err = manifest.Parse(document)
	}
	if err != nil {
		a.logger.Errorf("Failed to parse manifest (request_id=%s): %v", r.Header.Get(RequestIDHeader), err)
		return nil, "", err
	}
	return tree, baseURL, nil
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, errFetch):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		kind := dash.KindOf(err)
		writeJSON(w, statusForKind(kind), errorResponse{Error: err.Error(), Kind: string(kind)})
	}
}

func statusForKind(kind dash.Kind) int {
	switch kind {
	case dash.KindMalformedDocument, dash.KindInvalidPosition:
		return http.StatusBadRequest
	case dash.KindNoAdaptationSet, dash.KindNoRepresentation:
		return http.StatusNotFound
	case dash.KindNoPeriod, dash.KindNoSegmentTemplate, dash.KindNoSegmentDuration, dash.KindAttributeParse:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
