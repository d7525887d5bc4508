package http

import (
	"net/http"

	"finviz/internal/engine"
	"finviz/internal/log"
)

// handleCharts returns every projection for the filter in the query string.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	res, ok := s.aggregate(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Body(res).Write(w)
}

// handleChart returns a single projection, addressed by its chart kind.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind, ok := engine.ParseChartKind(r.PathValue("kind"))
	if !ok {
		NotFoundError("Unknown chart, expected one of bar, pie, line, bubble, radar").Write(w)
		return
	}

	res, ok := s.aggregate(w, r)
	if !ok {
		return
	}
	chart, _ := res.Charts.Get(kind)
	NewJSONResponse().Body(map[string]any{
		"filter": res.Filter,
		"kind":   kind,
		"chart":  chart,
	}).Write(w)
}

func (s *Server) aggregate(w http.ResponseWriter, r *http.Request) (engine.Result, bool) {
	ctx := r.Context()
	state := ParseFilterParams(r.URL.Query())

	res, err := s.charts.Charts(ctx, state)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Chart aggregation failed",
			log.NewFields().WithFilter(state).WithError(err).WithOperation(log.OpAggregate).ToSlice()...)
		InternalServerError("Failed to compute charts").Write(w)
		return engine.Result{}, false
	}
	return res, true
}

// handleView returns the projection currently displayed.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.view.Current()).Write(w)
}

// handleSetViewFilter changes the displayed selection and returns the
// recomputed view. A concurrent newer change wins; the response then
// carries that newer state.
func (s *Server) handleSetViewFilter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state, err := ParseFilterBody(r)
	if err != nil {
		BadRequestError("Invalid filter", err.Error()).Write(w)
		return
	}

	view, err := s.view.SetFilter(ctx, state)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "View recompute failed",
			log.NewFields().WithFilter(state).WithError(err).ToSlice()...)
		InternalServerError("Failed to update view").Write(w)
		return
	}
	NewJSONResponse().Body(view).Write(w)
}
