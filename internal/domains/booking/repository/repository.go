package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"toolrent/infras/otel"
	"toolrent/infras/postgres"
	"toolrent/internal/domains/booking/model"
	toolModel "toolrent/internal/domains/tool/model"
	"toolrent/shared"
	"toolrent/shared/constant"
	gDto "toolrent/shared/dto"
	"toolrent/shared/logger"
	gRepo "toolrent/shared/repository"
	"toolrent/shared/timezone"

	"github.com/jmoiron/sqlx"
)

type Booking interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, booking model.Booking) error
	InsertItemsTx(ctx context.Context, sqltx *sqlx.Tx, items []model.Item) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	GetItems(ctx context.Context, bookingIDs ...string) ([]model.Item, error)
	GetItemsTx(ctx context.Context, sqltx *sqlx.Tx, bookingID string) ([]model.Item, error)
	UpdateStatusTx(ctx context.Context, sqltx *sqlx.Tx, id string, status model.Status) error
	UpdateItemsTx(ctx context.Context, sqltx *sqlx.Tx, ids []string, fields map[string]any) (int64, error)
	MarkOverdue(ctx context.Context, asOf time.Time) ([]string, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	items gRepo.Repository[model.Item]
	db    *postgres.Connection
	otel  otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		items:      gRepo.NewRepository[model.Item](model.ItemEntityName, model.ItemTableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// itemOrder keeps items of a booking in a stable order by tool name.
var itemOrder = gDto.QueryParams{SortBy: toolModel.TableName + "." + toolModel.FieldName, SortDir: gDto.SortDirAsc}

func (r *repositoryImpl) InsertItemsTx(ctx context.Context, sqltx *sqlx.Tx, items []model.Item) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.InsertItemsTx")
	defer scope.End()

	return r.items.InsertBulkTx(ctx, sqltx, items) //nolint:wrapcheck
}

func (r *repositoryImpl) GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetForUpdateTx")
	defer scope.End()

	return r.Repository.GetForUpdateTx(ctx, sqltx, shared.FilterByID(id, model.FieldID, model.TableName)) //nolint:wrapcheck
}

func (r *repositoryImpl) GetItems(ctx context.Context, bookingIDs ...string) ([]model.Item, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetItems")
	defer scope.End()

	if len(bookingIDs) == 0 {
		return []model.Item{}, nil
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldBookingID, Value: bookingIDs, Operator: gDto.FilterOperatorIn, Table: model.ItemTableName},
		},
	}

	return r.items.GetAll(ctx, itemOrder, filter) //nolint:wrapcheck
}

func (r *repositoryImpl) GetItemsTx(ctx context.Context, sqltx *sqlx.Tx, bookingID string) ([]model.Item, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetItemsTx")
	defer scope.End()

	return r.items.GetAllTx(ctx, sqltx, itemOrder, shared.FilterByID(bookingID, model.FieldBookingID, model.ItemTableName)) //nolint:wrapcheck
}

func (r *repositoryImpl) UpdateStatusTx(ctx context.Context, sqltx *sqlx.Tx, id string, status model.Status) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateStatusTx")
	defer scope.End()

	fields := map[string]any{
		model.FieldStatus:        status,
		constant.FieldModifiedAt: timezone.Now(),
	}

	return r.UpdateTx(ctx, sqltx, fields, shared.FilterByID(id, model.FieldID, model.TableName)) //nolint:wrapcheck
}

// UpdateItemsTx applies fields to the given booking items and reports how many rows changed.
func (r *repositoryImpl) UpdateItemsTx(ctx context.Context, sqltx *sqlx.Tx, ids []string, fields map[string]any) (int64, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateItemsTx")
	defer scope.End()

	if len(ids) == 0 {
		return 0, nil
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{ArgName: "item_id", Field: model.FieldID, Value: ids, Operator: gDto.FilterOperatorIn, Table: model.ItemTableName},
		},
	}

	return r.items.UpdateTxAffected(ctx, sqltx, fields, filter) //nolint:wrapcheck
}

// MarkOverdue moves checked-out items of bookings that ended before asOf to overdue
// in one statement. It returns the parent booking id of every item it moved.
func (r *repositoryImpl) MarkOverdue(ctx context.Context, asOf time.Time) ([]string, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.MarkOverdue")
	defer scope.End()

	query := `UPDATE booking_items AS bi
		SET status = :overdue, modified_at = :modified_at
		FROM bookings AS b
		WHERE b.id = bi.booking_id
			AND bi.status = :checked_out
			AND b.end_date < CAST(:as_of AS DATE)
		RETURNING bi.booking_id`

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	bookingIDs := []string{}

	prepare, err := r.db.Write.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return bookingIDs, fmt.Errorf("failed to prepare overdue scan: %w", err)
	}
	defer prepare.Close()

	err = prepare.SelectContext(ctx, &bookingIDs, map[string]any{
		"overdue":     model.ItemStatusOverdue,
		"checked_out": model.ItemStatusCheckedOut,
		"modified_at": timezone.Now(),
		"as_of":       asOf.Format(time.DateOnly),
	})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return bookingIDs, fmt.Errorf("failed to mark overdue items: %w", err)
	}

	return bookingIDs, nil
}
