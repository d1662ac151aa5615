package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/resolve"
	"github.com/desertthunder/correx/internal/shared"
	"github.com/desertthunder/correx/internal/tasks"
)

// CorrectionReader is the subset of [tasks.CorrectionEngine] the bridge serves from.
type CorrectionReader interface {
	tasks.Loader
	History(ctx context.Context, entityType models.EntityType, entityID int) ([]models.CorrectionHistoryItem, error)
	Pending(ctx context.Context, entityType models.EntityType, entityID int) (*int, error)
}

const (
	routeCorrection = "GET /correction/{id}"
	routeHistory    = "GET /{entity}/{id}/corrections"
	routePending    = "GET /{entity}/{id}/pending-correction"
	routeHealth     = "GET /health"
)

// CorrectionHandler serves resolved correction pages and entity queries as JSON.
type CorrectionHandler struct {
	reader CorrectionReader
}

// NewCorrectionHandler creates a [CorrectionHandler] backed by reader.
func NewCorrectionHandler(reader CorrectionReader) *CorrectionHandler {
	return &CorrectionHandler{reader: reader}
}

// Routes implements [Handler].
func (h *CorrectionHandler) Routes() []string {
	return []string{routeCorrection, routeHistory, routePending, routeHealth}
}

// ServeHTTP dispatches on the matched pattern.
func (h *CorrectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeCorrection:
		h.page(w, r)
	case routeHistory:
		h.history(w, r)
	case routePending:
		h.pending(w, r)
	case routeHealth:
		writeData(w, map[string]string{"health": "ok"})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// page answers with the page even when parts failed; only a failed detail is an error response.
func (h *CorrectionHandler) page(w http.ResponseWriter, r *http.Request) {
	params, err := resolve.ParseParams(r.PathValue("id"), r.URL.Query().Get("compare"))
	if err != nil {
		respondErr(w, err)
		return
	}

	page, err := h.reader.Load(r.Context(), params, nil)
	if err != nil {
		respondErr(w, err)
		return
	}
	if page.DetailErr != nil {
		respondErr(w, page.DetailErr)
		return
	}
	writeData(w, page)
}

func (h *CorrectionHandler) history(w http.ResponseWriter, r *http.Request) {
	entityType, id, err := entityPath(r)
	if err != nil {
		respondErr(w, err)
		return
	}

	items, err := h.reader.History(r.Context(), entityType, id)
	if err != nil {
		respondErr(w, err)
		return
	}
	if items == nil {
		items = []models.CorrectionHistoryItem{}
	}
	writeData(w, items)
}

func (h *CorrectionHandler) pending(w http.ResponseWriter, r *http.Request) {
	entityType, id, err := entityPath(r)
	if err != nil {
		respondErr(w, err)
		return
	}

	pending, err := h.reader.Pending(r.Context(), entityType, id)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, map[string]*int{"correction_id": pending})
}

func entityPath(r *http.Request) (models.EntityType, int, error) {
	entityType, err := models.ParseEntityType(r.PathValue("entity"))
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("%w: entity id %q must be a positive integer", shared.ErrInvalidArgument, r.PathValue("id"))
	}
	return entityType, id, nil
}

// NewRouter builds the preview router with request ids, access logging and panic recovery.
func NewRouter(reader CorrectionReader, opts RouterOpts) *BasicRouter {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	router := NewBasicRouter()
	router.Use(WithRequestID(opts.Logger), AccessLog(opts.SlowRequest), Recover)
	router.Handler(NewCorrectionHandler(reader))
	return router
}
