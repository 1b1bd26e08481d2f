package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	app "github.com/R3E-Network/item_service/internal/app"
	"github.com/R3E-Network/item_service/internal/app/domain/item"
	"github.com/R3E-Network/item_service/internal/app/metrics"
	"github.com/R3E-Network/item_service/internal/app/services/items"
	"github.com/R3E-Network/item_service/pkg/logger"
)

// Options configures NewHandler.
type Options struct {
	// TestMode registers destructive test-only routes.
	TestMode bool
	Metrics  *metrics.Recorder
	Logger   *logger.Logger
}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// apiFunc is a route handler whose failures are rendered by writeError.
type apiFunc func(w http.ResponseWriter, r *http.Request) error

// NewHandler returns the full HTTP surface wrapped in the request pipeline.
// Test-only routes are registered once here, never toggled per request.
func NewHandler(application *app.Application, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	recorder := opts.Metrics
	if recorder == nil {
		recorder = metrics.New("")
	}

	h := &handler{app: application, log: log}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(h.notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)

	router.Handle("/health", h.wrap(h.health)).Methods(http.MethodGet)
	router.Handle("/add", h.wrap(h.addItem)).Methods(http.MethodPost)
	router.Handle("/stats", h.wrap(h.stats)).Methods(http.MethodGet)
	router.Handle("/items", h.wrap(h.listItems)).Methods(http.MethodGet)
	router.Handle("/metrics", recorder.Handler()).Methods(http.MethodGet)
	if opts.TestMode {
		router.Handle("/test/clear_items", h.wrap(h.clearItems)).Methods(http.MethodPost)
		log.Warn("test mode enabled: /test/clear_items is registered")
	}

	return withRequestPipeline(log, recorder, router, h.withRecovery(router))
}

func (h *handler) wrap(fn apiFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.writeError(w, r, err)
		}
	})
}

type itemResponse struct {
	Status    string  `json:"status,omitempty"`
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	CreatedAt string  `json:"created_at"`
}

type statsResponse struct {
	Status   string  `json:"status"`
	Count    int64   `json:"count"`
	AvgPrice float64 `json:"avg_price"`
}

type pageResponse struct {
	Status string         `json:"status"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Total  int64          `json:"total"`
	Items  []itemResponse `json:"items"`
}

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func toItemResponse(it item.Item) itemResponse {
	return itemResponse{
		ID:        it.ID,
		Name:      it.Name,
		Price:     it.Price,
		CreatedAt: item.FormatTimestamp(it.CreatedAt),
	}
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	return nil
}

func (h *handler) addItem(w http.ResponseWriter, r *http.Request) error {
	in, err := item.DecodeInput(r.Body)
	if err != nil {
		return err
	}

	created, err := h.app.Items.Add(r.Context(), in)
	if err != nil {
		return err
	}

	resp := toItemResponse(created)
	resp.Status = "ok"
	writeJSON(w, http.StatusCreated, resp)
	return nil
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.app.Items.Stats(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, statsResponse{Status: "ok", Count: stats.Count, AvgPrice: stats.AvgPrice})
	return nil
}

func (h *handler) listItems(w http.ResponseWriter, r *http.Request) error {
	page, limit, err := parsePagination(r)
	if err != nil {
		return err
	}

	result, err := h.app.Items.List(r.Context(), page, limit)
	if err != nil {
		return err
	}

	out := make([]itemResponse, 0, len(result.Items))
	for _, it := range result.Items {
		out = append(out, toItemResponse(it))
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Status: "ok",
		Page:   result.Page,
		Limit:  result.Limit,
		Total:  result.Total,
		Items:  out,
	})
	return nil
}

func (h *handler) clearItems(w http.ResponseWriter, r *http.Request) error {
	err := h.app.Items.Clear(r.Context())
	switch {
	case errors.Is(err, items.ErrClearIncomplete):
		writeJSON(w, http.StatusOK, statusResponse{Status: "error", Error: "Items not deleted"})
		return nil
	case err != nil:
		return err
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	return nil
}

// parsePagination reads page and limit. Absent or empty values take the
// defaults and anything that is not an integer is rejected. Integers below 1
// are clamped by items.NormalizePage.
func parsePagination(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	var violations []item.Violation

	page, v := queryInt(q.Get("page"), "page", 1)
	violations = append(violations, v...)
	limit, v := queryInt(q.Get("limit"), "limit", items.DefaultPageSize)
	violations = append(violations, v...)

	if len(violations) > 0 {
		return 0, 0, &item.ValidationError{Violations: violations}
	}
	page, limit = items.NormalizePage(page, limit)
	return page, limit, nil
}

func queryInt(raw, name string, def int) (int, []item.Violation) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	// out-of-range integers come back saturated at the int32 bounds
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, []item.Violation{{
			Loc:  []any{"query", name},
			Msg:  "Input should be a valid integer, unable to parse string as an integer",
			Type: item.KindIntParsing,
		}}
	}
	return int(n), nil
}
