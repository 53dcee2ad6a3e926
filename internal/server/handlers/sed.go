package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap"
	"github.com/agentstation/sedmap/internal/server/response"
	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/logging"
	"github.com/agentstation/sedmap/pkg/references"
	"github.com/agentstation/sedmap/pkg/sed"
)

// SED is the body of a successful SED request.
type SED struct {
	Object        string              `json:"object"`
	RequestedName string              `json:"requested_name"`
	LoadID        string              `json:"load_id"`
	SED           *sed.SED            `json:"sed"`
	Reports       []sedmap.LoadReport `json:"reports"`
	Diagnostics   []sedmap.Diagnostic `json:"diagnostics"`
}

// Inventory is the body of a successful inventory request.
type Inventory struct {
	Object        string             `json:"object"`
	RequestedName string             `json:"requested_name"`
	Tables        catalogs.Inventory `json:"tables"`
}

// HandleSED handles GET /api/v1/sed/{name}.
//
// Query parameters:
//   - only: comma-separated loaders to run, in order (default: all)
//   - uncertainty_scale: flux multiplier for spectra without uncertainties
//
// @Summary Assemble an SED
// @Description Resolve the object name, load its catalog records and return the SED with per-record reports
// @Tags sed
// @Produce json
// @Param name path string true "Object name or alias"
// @Param only query string false "Comma-separated loaders: coords, parallax, photometry, spectral_type, spectra"
// @Param uncertainty_scale query number false "Flux multiplier for spectra without uncertainties"
// @Success 200 {object} response.Response{data=SED}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/sed/{name} [get].
func (h *Handlers) HandleSED(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	opts := []sedmap.Option{}
	if raw := q.Get("uncertainty_scale"); raw != "" {
		scale, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.BadRequest(w, "Invalid uncertainty_scale", err.Error())
			return
		}
		opts = append(opts, sedmap.WithUncertaintyScale(scale))
	}
	only := splitList(q.Get("only"))
	opts = append(opts, sedmap.WithAutoLoad(len(only) == 0))

	adapter, err := h.adapter(r, opts...)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if len(only) > 0 {
		if _, err := adapter.Load(ctx, only...); err != nil {
			response.ErrorFromType(w, err)
			return
		}
	}

	s := adapter.SED()
	if s == nil {
		response.InternalError(w, errors.NewConfigError("sed", "model is not a *sed.SED", nil))
		return
	}

	reports := adapter.Reports()
	if reports == nil {
		reports = []sedmap.LoadReport{}
	}
	diags := adapter.Diagnostics()
	if diags == nil {
		diags = []sedmap.Diagnostic{}
	}
	response.OK(w, SED{
		Object:        adapter.Name(),
		RequestedName: adapter.RequestedName(),
		LoadID:        adapter.LoadID(),
		SED:           s,
		Reports:       reports,
		Diagnostics:   diags,
	})
}

// HandleSearch handles GET /api/v1/search?name=.
// @Summary Search objects
// @Description Case-insensitive substring search over source names and aliases
// @Tags catalog
// @Produce json
// @Param name query string true "Name fragment"
// @Success 200 {object} response.Response{data=[]object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /api/v1/search [get].
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		response.BadRequest(w, "Missing name", "the name query parameter is required")
		return
	}

	cat, err := h.app.Catalog(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	rows, err := cat.SearchObject(r.Context(), name)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if rows == nil {
		rows = []catalogs.Row{}
	}
	response.OK(w, rows)
}

// HandleInventory handles GET /api/v1/inventory/{name}. The optional
// table query parameter restricts the result to one table.
// @Summary Object inventory
// @Description Raw catalog rows keyed to the object, grouped by table
// @Tags catalog
// @Produce json
// @Param name path string true "Object name or alias"
// @Param table query string false "Return only this table"
// @Success 200 {object} response.Response{data=Inventory}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/inventory/{name} [get].
func (h *Handlers) HandleInventory(w http.ResponseWriter, r *http.Request) {
	adapter, err := h.adapter(r, sedmap.WithAutoLoad(false))
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	inv := adapter.Inventory()
	if table := r.URL.Query().Get("table"); table != "" {
		rows, ok := inv.Rows(table)
		if !ok {
			response.ErrorFromType(w, errors.NewNotFoundError("table", table))
			return
		}
		inv = catalogs.Inventory{table: rows}
	}
	response.OK(w, Inventory{
		Object:        adapter.Name(),
		RequestedName: adapter.RequestedName(),
		Tables:        inv,
	})
}

// HandleBibcode handles GET /api/v1/bibcodes/{publication}. An
// unresolved key is still a 200; the status field says why.
// @Summary Resolve a publication
// @Description Map a Publications key to its bibcode
// @Tags catalog
// @Produce json
// @Param publication path string true "Publication key"
// @Success 200 {object} response.Response{data=references.Resolution}
// @Router /api/v1/bibcodes/{publication} [get].
func (h *Handlers) HandleBibcode(w http.ResponseWriter, r *http.Request) {
	cat, err := h.app.Catalog(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	resolver := references.NewResolver(cat, references.WithLogger(logging.FromContext(r.Context())))
	response.OK(w, resolver.Resolve(r.Context(), r.PathValue("publication")))
}

// adapter builds a fresh adapter for the {name} path value. Adapters
// are not safe for concurrent use, so requests never share one.
func (h *Handlers) adapter(r *http.Request, extra ...sedmap.Option) (*sedmap.Adapter, error) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		return nil, errors.NewValidationError("name", name, "object name is required")
	}

	cat, err := h.app.Catalog(r.Context())
	if err != nil {
		return nil, err
	}

	opts := append(h.app.AdapterOptions(), sedmap.WithLogger(h.requestLogger(r)))
	if h.metrics != nil {
		opts = append(opts, sedmap.WithMetrics(h.metrics))
	}
	opts = append(opts, extra...)
	return sedmap.New(r.Context(), cat, name, opts...)
}

// requestLogger returns the logger the middleware stored on the request,
// falling back to the handler logger.
func (h *Handlers) requestLogger(r *http.Request) *zerolog.Logger {
	if l := logging.FromContext(r.Context()); l != logging.Default() {
		return l
	}
	return h.logger
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
