// Package v1 provides the REST API handlers for the sync engine.
package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/api/common"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/service"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
)

// ListPeriodsResponse is the body of GET /periods
type ListPeriodsResponse struct {
	Periods []*status.Entry `json:"periods"`
	Count   int             `json:"count"`
}

// Routes defines the sync API routes
type Routes struct {
	service service.SyncService
}

// NewRoutes creates a new Routes instance with the provided service
func NewRoutes(svc service.SyncService) *Routes {
	return &Routes{service: svc}
}

// Router creates a new router for the sync API
func Router(svc service.SyncService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Get("/periods", routes.listPeriods)
	r.Get("/periods/{kind}/{periodID}", routes.getPeriod)
	r.Post("/refresh", routes.refresh)
	r.Get("/sync", routes.syncStatus)
	return r
}

// listPeriods handles GET /periods?kind=&status=&from=&to=
func (rr *Routes) listPeriods(w http.ResponseWriter, r *http.Request) {
	var opts []service.Option
	if kind := common.QueryParam(r, "kind"); kind != "" {
		opts = append(opts, service.WithKind(kind))
	}
	if st := common.QueryParam(r, "status"); st != "" {
		opts = append(opts, service.WithStatus(st))
	}
	from, to := common.QueryParam(r, "from"), common.QueryParam(r, "to")
	if from != "" || to != "" {
		opts = append(opts, service.WithRange(from, to))
	}

	entries, err := rr.service.ListPeriods(r.Context(), opts...)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, ListPeriodsResponse{Periods: entries, Count: len(entries)}, http.StatusOK)
}

// getPeriod handles GET /periods/{kind}/{periodID}
func (rr *Routes) getPeriod(w http.ResponseWriter, r *http.Request) {
	kind, err := common.GetAndValidateURLParam(r, "kind")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	periodID, err := common.GetAndValidateURLParam(r, "periodID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := rr.service.GetPeriod(r.Context(), period.Kind(kind), periodID)
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, entry, http.StatusOK)
}

// refresh handles POST /refresh. It blocks until the foreground pass finishes.
func (rr *Routes) refresh(w http.ResponseWriter, r *http.Request) {
	summary, err := rr.service.Refresh(r.Context())
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	slog.InfoContext(r.Context(), "Manual refresh finished", "tasks", summary.Tasks, "failed", summary.Failed)
	common.WriteJSONResponse(w, summary, http.StatusOK)
}

// syncStatus handles GET /sync
func (rr *Routes) syncStatus(w http.ResponseWriter, r *http.Request) {
	st, err := rr.service.SyncStatus(r.Context())
	if err != nil {
		common.WriteServiceError(w, err)
		return
	}
	common.WriteJSONResponse(w, st, http.StatusOK)
}
