package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"toolrent/infras/otel"
	"toolrent/infras/postgres"
	bookingModel "toolrent/internal/domains/booking/model"
	"toolrent/internal/domains/report/model"
	"toolrent/shared/constant"
	"toolrent/shared/logger"
)

const statsQuery = `SELECT
	(SELECT COUNT(*) FROM tools) AS total_tools,
	(SELECT COUNT(*) FROM bookings) AS total_bookings,
	(SELECT COUNT(*) FROM bookings WHERE status IN (:pending, :confirmed)) AS active_bookings,
	(SELECT COUNT(DISTINCT user_id) FROM bookings) AS members,
	(SELECT COALESCE(SUM(quantity), 0) FROM booking_items WHERE status = :checked_out) AS checked_out_units,
	(SELECT COALESCE(SUM(quantity), 0) FROM booking_items WHERE status = :overdue) AS overdue_units`

const usageQuery = `SELECT
	(SELECT COUNT(*) FROM bookings
		WHERE created_at >= CAST(:from AS DATE) AND created_at < CAST(:until AS DATE)) AS bookings_created,
	(SELECT COALESCE(SUM(quantity), 0) FROM booking_items
		WHERE checked_out_at >= CAST(:from AS DATE) AND checked_out_at < CAST(:until AS DATE)) AS units_checked_out`

const topToolsQuery = `SELECT bi.tool_id, tools.name, SUM(bi.quantity) AS quantity
	FROM booking_items bi
	JOIN tools ON tools.id = bi.tool_id
	WHERE bi.checked_out_at >= CAST(:from AS DATE) AND bi.checked_out_at < CAST(:until AS DATE)
	GROUP BY bi.tool_id, tools.name
	ORDER BY quantity DESC, tools.name ASC
	LIMIT :limit`

type Report interface {
	Stats(ctx context.Context) (model.Stats, error)
	Usage(ctx context.Context, from, until time.Time) (model.Usage, error)
	TopTools(ctx context.Context, from, until time.Time, limit int) ([]model.TopTool, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Report {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

func (r *repositoryImpl) Stats(ctx context.Context) (model.Stats, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".report.Stats")
	defer scope.End()

	var stats model.Stats

	err := r.get(ctx, &stats, statsQuery, map[string]any{
		"pending":     bookingModel.StatusPending,
		"confirmed":   bookingModel.StatusConfirmed,
		"checked_out": bookingModel.ItemStatusCheckedOut,
		"overdue":     bookingModel.ItemStatusOverdue,
	})
	if err != nil {
		scope.TraceError(err)

		return stats, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}

// Usage counts activity in [from, until).
func (r *repositoryImpl) Usage(ctx context.Context, from, until time.Time) (model.Usage, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".report.Usage")
	defer scope.End()

	var usage model.Usage

	if err := r.get(ctx, &usage, usageQuery, rangeArgs(from, until)); err != nil {
		scope.TraceError(err)

		return usage, fmt.Errorf("failed to get usage: %w", err)
	}

	return usage, nil
}

func (r *repositoryImpl) TopTools(ctx context.Context, from, until time.Time, limit int) ([]model.TopTool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".report.TopTools")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, topToolsQuery)

	tools := []model.TopTool{}
	args := rangeArgs(from, until)
	args["limit"] = limit

	prepare, err := r.db.Read.PrepareNamedContext(ctx, topToolsQuery)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return tools, fmt.Errorf("failed to prepare top tools query: %w", err)
	}
	defer prepare.Close()

	if err = prepare.SelectContext(ctx, &tools, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return tools, fmt.Errorf("failed to get top tools: %w", err)
	}

	return tools, nil
}

func (r *repositoryImpl) get(ctx context.Context, dest any, query string, args map[string]any) error {
	prepare, err := r.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer prepare.Close()

	if err = prepare.GetContext(ctx, dest, args); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to run statement: %w", err)
	}

	return nil
}

func rangeArgs(from, until time.Time) map[string]any {
	return map[string]any{
		"from":  from.Format(time.DateOnly),
		"until": until.Format(time.DateOnly),
	}
}
