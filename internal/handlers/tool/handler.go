package tool

import (
	"net/http"
	"strconv"

	"toolrent/infras/otel"
	"toolrent/internal/domains/tool/model"
	"toolrent/internal/domains/tool/model/dto"
	"toolrent/internal/domains/tool/service"
	"toolrent/shared"
	"toolrent/shared/constant"
	gDto "toolrent/shared/dto"
	"toolrent/shared/failure"
	"toolrent/shared/validator"
	"toolrent/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	queryParamQuery         = "query"
	queryParamCategoryID    = "category_id"
	queryParamStatus        = "status"
	queryParamMinPrice      = "min_price"
	queryParamMaxPrice      = "max_price"
	queryParamAvailableOnly = "available_only"
	queryParamSearch        = "search"
)

type Handler struct {
	service service.Catalog
	otel    otel.Otel
}

func New(service service.Catalog, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/tools", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.SearchTools)
		routerGroup.Post("/", handler.CreateTool)
		routerGroup.Get("/available", handler.GetAvailableTools)
		routerGroup.Get("/{id}", handler.GetToolByID)
		routerGroup.Patch("/{id}", handler.UpdateTool)
		routerGroup.Patch("/{id}/status", handler.UpdateToolStatus)
		routerGroup.Patch("/{id}/quantity", handler.AdjustQuantity)
		routerGroup.Delete("/{id}", handler.DeleteTool)
	})
}

// SearchTools lists catalog tools.
// @Summary Search tools
// @Description Search the catalog by text, category, status and price with pagination.
// @Tags Tool
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param query query string false "Matches name or description"
// @Param category_id query integer false "Category ID"
// @Param status query string false "Tool status"
// @Param min_price query number false "Minimum price per day"
// @Param max_price query number false "Maximum price per day"
// @Param available_only query boolean false "Only tools that can be booked now"
// @Success 200 {object} response.Data[dto.GetToolsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tools [get]
func (handler *Handler) SearchTools(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SearchTools")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filter, err := searchFilterFromRequest(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	tools, err := handler.service.Search(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to search tools")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, tools)
}

// GetAvailableTools lists tools with free units in a period.
// @Summary List tools available in a period
// @Description Returns every bookable tool with the number of units not reserved in [start_date, end_date).
// @Tags Tool
// @Produce json
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD), exclusive"
// @Param category_id query integer false "Category ID"
// @Param search query string false "Tool name contains"
// @Success 200 {object} response.Data[dto.AvailableToolsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tools/available [get]
func (handler *Handler) GetAvailableTools(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailableTools")
	defer scope.End()

	query := periodFromRequest(r)
	if err := validator.ValidateStruct(&query); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	filter := dto.AvailableFilter{Search: r.URL.Query().Get(queryParamSearch)}

	if raw := r.URL.Query().Get(queryParamCategoryID); raw != constant.Empty {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.WithError(w, failure.BadRequestFromString("category_id must be a positive integer"))

			return
		}

		filter.CategoryID = parsed
	}

	tools, err := handler.service.ListAvailableInPeriod(ctx, query, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list available tools")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, tools)
}

// GetToolByID retrieves a tool.
// @Summary Get a tool by ID
// @Description When start_date and end_date are both given the response includes available_in_period.
// @Tags Tool
// @Produce json
// @Param id path string true "Tool ID"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD), exclusive"
// @Success 200 {object} response.Data[dto.ToolResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tools/{id} [get]
func (handler *Handler) GetToolByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetToolByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	query := periodFromRequest(r)

	var (
		tool dto.ToolResponse
		err  error
	)

	if query.StartDate == constant.Empty && query.EndDate == constant.Empty {
		tool, err = handler.service.Get(ctx, id)
	} else {
		tool, err = handler.service.GetInPeriod(ctx, id, query)
	}

	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to get tool")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, tool)
}

// CreateTool adds a tool to the catalog.
// @Summary Create a tool
// @Tags Tool
// @Accept json
// @Produce json
// @Param request body dto.CreateToolRequest true "Create Tool Request"
// @Success 201 {object} response.Data[dto.ToolResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tools [post]
// @Security BearerAuth
func (handler *Handler) CreateTool(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateTool")
	defer scope.End()

	req := dto.CreateToolRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	tool, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create tool")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Tool created by user " + user)

	response.WithJSON(w, http.StatusCreated, tool)
}

// UpdateTool changes descriptive fields of a tool.
// @Summary Update a tool
// @Tags Tool
// @Accept json
// @Produce json
// @Param id path string true "Tool ID"
// @Param request body dto.UpdateToolRequest true "Update Tool Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tools/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateTool(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateTool")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.UpdateToolRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to update tool")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Tool updated successfully")
}

// UpdateToolStatus sets the status of a tool.
// @Summary Update tool status
// @Tags Tool
// @Accept json
// @Produce json
// @Param id path string true "Tool ID"
// @Param request body dto.UpdateToolStatusRequest true "Update Tool Status Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tools/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) UpdateToolStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateToolStatus")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.UpdateToolStatusRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	if err := handler.service.UpdateStatus(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to update tool status")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Tool status updated successfully")
}

// AdjustQuantity adds delta units to the stock of a tool.
// @Summary Adjust tool quantity
// @Description Applies a signed delta to quantity_available. The result can never drop below zero.
// @Tags Tool
// @Accept json
// @Produce json
// @Param id path string true "Tool ID"
// @Param request body dto.AdjustQuantityRequest true "Adjust Quantity Request"
// @Success 200 {object} response.Data[dto.QuantityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tools/{id}/quantity [patch]
// @Security BearerAuth
func (handler *Handler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AdjustQuantity")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.AdjustQuantityRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.UpdateQuantity(ctx, id, req.Delta)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Int("delta", req.Delta).Msg("failed to adjust tool quantity")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteTool removes a tool that was never booked.
// @Summary Delete a tool
// @Tags Tool
// @Produce json
// @Param id path string true "Tool ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tools/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteTool(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteTool")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to delete tool")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Tool deleted successfully")
}

func periodFromRequest(r *http.Request) dto.PeriodQuery {
	return dto.PeriodQuery{
		StartDate: r.URL.Query().Get(constant.RequestParamStartDate),
		EndDate:   r.URL.Query().Get(constant.RequestParamEndDate),
	}
}

func searchFilterFromRequest(r *http.Request) (dto.SearchFilter, error) {
	query := r.URL.Query()
	filter := dto.SearchFilter{
		Query:  query.Get(queryParamQuery),
		Status: model.Status(query.Get(queryParamStatus)),
	}

	if filter.Status != constant.Empty {
		if err := validator.ValidateVar(string(filter.Status), "oneof=available reserved checked_out maintenance inactive"); err != nil {
			return filter, failure.BadRequestFromString("status is not a valid tool status") // nolint:wrapcheck
		}
	}

	if raw := query.Get(queryParamCategoryID); raw != constant.Empty {
		categoryID, err := strconv.Atoi(raw)
		if err != nil {
			return filter, failure.BadRequestFromString("category_id must be an integer") // nolint:wrapcheck
		}

		filter.CategoryID = categoryID
	}

	for param, target := range map[string]**decimal.Decimal{
		queryParamMinPrice: &filter.MinPrice,
		queryParamMaxPrice: &filter.MaxPrice,
	} {
		raw := query.Get(param)
		if raw == constant.Empty {
			continue
		}

		price, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, failure.BadRequestFromString(param + " must be a number") // nolint:wrapcheck
		}

		*target = &price
	}

	if available := shared.ConvertStringToBool(query.Get(queryParamAvailableOnly)); available != nil {
		filter.AvailableOnly = *available
	}

	return filter, nil
}
