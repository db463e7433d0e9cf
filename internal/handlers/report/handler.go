package report

import (
	"net/http"

	"toolrent/infras/otel"
	"toolrent/internal/domains/report/model/dto"
	"toolrent/internal/domains/report/service"
	"toolrent/shared/constant"
	"toolrent/shared/validator"
	"toolrent/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Report
	otel    otel.Otel
}

func New(service service.Report, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/admin", func(routerGroup chi.Router) {
		routerGroup.Get("/stats", handler.GetStats)
		routerGroup.Get("/usage", handler.GetUsage)
	})
}

// GetStats returns inventory and booking totals.
// @Summary Get admin statistics
// @Tags Report
// @Produce json
// @Success 200 {object} response.Data[dto.StatsResponse]
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/stats [get]
// @Security BearerAuth
func (handler *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetStats")
	defer scope.End()

	stats, err := handler.service.Stats(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get stats")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, stats)
}

// GetUsage returns booking activity between two dates, both inclusive.
// @Summary Get usage statistics
// @Tags Report
// @Produce json
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.UsageResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/usage [get]
// @Security BearerAuth
func (handler *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUsage")
	defer scope.End()

	query := dto.UsageQuery{
		From: r.URL.Query().Get(constant.RequestParamFrom),
		To:   r.URL.Query().Get(constant.RequestParamTo),
	}

	if err := validator.ValidateStruct(&query); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	usage, err := handler.service.Usage(ctx, query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("from", query.From).Str("to", query.To).Msg("failed to get usage")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, usage)
}
