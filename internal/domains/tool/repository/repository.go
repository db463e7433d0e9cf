package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"toolrent/infras/otel"
	"toolrent/infras/postgres"
	bookingModel "toolrent/internal/domains/booking/model"
	"toolrent/internal/domains/tool/model"
	"toolrent/shared/constant"
	gDto "toolrent/shared/dto"
	"toolrent/shared/logger"
	gRepo "toolrent/shared/repository"
	"toolrent/shared/timezone"

	"github.com/jmoiron/sqlx"
)

type Tool interface {
	Insert(ctx context.Context, model model.Tool) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Tool, error)
	GetTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Tool, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Tool, error)
	GetAllTx(ctx context.Context, sqltx *sqlx.Tx, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Tool, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	CompareAndAdjustTx(ctx context.Context, sqltx *sqlx.Tx, id string, version, delta int) (bool, error)
	ListAvailableInPeriod(ctx context.Context, start, end time.Time, filter model.AvailabilityFilter) ([]model.Availability, error)
	FreeInPeriod(ctx context.Context, id string, start, end time.Time) (int, error)
	HasBookingHistory(ctx context.Context, id string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Tool]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Tool {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Tool](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// CompareAndAdjustTx applies delta only while the row still carries version and the
// result stays non-negative. It reports false when no row matched.
func (r *repositoryImpl) CompareAndAdjustTx(ctx context.Context, sqltx *sqlx.Tx, id string, version, delta int) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tool.CompareAndAdjustTx")
	defer scope.End()

	query := `UPDATE tools
		SET quantity_available = quantity_available + :delta, version = version + 1, modified_at = :modified_at
		WHERE id = :id AND version = :version AND quantity_available + :delta >= 0`

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := sqltx.NamedExecContext(ctx, query, map[string]any{
		"id":          id,
		"version":     version,
		"delta":       delta,
		"modified_at": timezone.Now(),
	})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to adjust tool quantity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read adjusted rows: %w", err)
	}

	return affected == 1, nil
}

// heldStatuses renders the held item statuses as an SQL list. The values are constants.
func heldStatuses() string {
	quoted := make([]string, len(bookingModel.HeldItemStatuses))
	for i, status := range bookingModel.HeldItemStatuses {
		quoted[i] = "'" + string(status) + "'"
	}

	return strings.Join(quoted, ", ")
}

// freeInPeriodExpr is the units a tool can still promise over [:start_date, :end_date):
// the shelf ledger plus everything held right now, minus what is held by bookings
// overlapping the window.
func freeInPeriodExpr() string {
	held := heldStatuses()

	return fmt.Sprintf(`tools.quantity_available
		+ COALESCE((SELECT SUM(bi.quantity) FROM booking_items bi
			WHERE bi.tool_id = tools.id AND bi.status IN (%[1]s)), 0)
		- COALESCE((SELECT SUM(bi.quantity) FROM booking_items bi
			JOIN bookings b ON b.id = bi.booking_id
			WHERE bi.tool_id = tools.id AND bi.status IN (%[1]s)
			AND b.start_date < CAST(:end_date AS DATE) AND b.end_date > CAST(:start_date AS DATE)), 0)`, held)
}

func (r *repositoryImpl) ListAvailableInPeriod(ctx context.Context, start, end time.Time, filter model.AvailabilityFilter) ([]model.Availability, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tool.ListAvailableInPeriod")
	defer scope.End()

	columns, join := r.SelectClause(ctx)
	args := map[string]any{
		"start_date":  start.Format(time.DateOnly),
		"end_date":    end.Format(time.DateOnly),
		"maintenance": model.StatusMaintenance,
		"inactive":    model.StatusInactive,
	}

	where := "tools.status NOT IN (:maintenance, :inactive)"
	if filter.CategoryID > 0 {
		where += " AND tools.category_id = :category_id"
		args["category_id"] = filter.CategoryID
	}

	if filter.Search != constant.Empty {
		where += " AND LOWER(tools.name) LIKE LOWER(:search)"
		args["search"] = "%" + filter.Search + "%"
	}

	query := fmt.Sprintf(`SELECT * FROM (
		SELECT %s, %s AS available_in_period FROM tools %s WHERE %s
	) AS candidates
	WHERE candidates.available_in_period > 0
	ORDER BY candidates.name ASC, candidates.id ASC`, columns, freeInPeriodExpr(), join, where)

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	models := []model.Availability{}

	prepare, err := r.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return models, fmt.Errorf("failed to prepare availability query: %w", err)
	}
	defer prepare.Close()

	if err = prepare.SelectContext(ctx, &models, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return models, fmt.Errorf("failed to list available tools: %w", err)
	}

	return models, nil
}

func (r *repositoryImpl) FreeInPeriod(ctx context.Context, id string, start, end time.Time) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tool.FreeInPeriod")
	defer scope.End()

	query := fmt.Sprintf("SELECT %s FROM tools WHERE tools.id = :id", freeInPeriodExpr())
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var free int

	prepare, err := r.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to prepare availability query: %w", err)
	}
	defer prepare.Close()

	err = prepare.GetContext(ctx, &free, map[string]any{
		"id":         id,
		"start_date": start.Format(time.DateOnly),
		"end_date":   end.Format(time.DateOnly),
	})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to compute tool availability: %w", err)
	}

	return free, nil
}

func (r *repositoryImpl) HasBookingHistory(ctx context.Context, id string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tool.HasBookingHistory")
	defer scope.End()

	query := "SELECT EXISTS(SELECT 1 FROM booking_items WHERE tool_id = :id)"
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	exist := false

	prepare, err := r.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to prepare booking history query: %w", err)
	}
	defer prepare.Close()

	if err = prepare.GetContext(ctx, &exist, map[string]any{"id": id}); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check booking history: %w", err)
	}

	return exist, nil
}
