package repository_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"toolrent/infras/otel/mocks"
	"toolrent/infras/postgres"
	"toolrent/internal/domains/tool/model"
	"toolrent/internal/domains/tool/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adjustQuery = `UPDATE tools\s+SET quantity_available = quantity_available \+ \$1, version = version \+ 1, modified_at = \$2\s+` +
	`WHERE id = \$3 AND version = \$4 AND quantity_available \+ \$5 >= 0`

func newRepository(t *testing.T) (repository.Tool, *sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	conn := sqlx.NewDb(db, "postgres")
	t.Cleanup(func() { _ = conn.Close() })

	return repository.New(&postgres.Connection{Read: conn, Write: conn}, mocks.NewOtel()), conn, mock
}

func TestCompareAndAdjustTx(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		want     bool
		wantErr  bool
	}{
		{name: "version still current", affected: 1, want: true},
		{name: "stale version or result below zero", affected: 0, want: false},
		{name: "database failure", execErr: errors.New("connection reset"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, conn, mock := newRepository(t)
			ctx := context.Background()

			mock.ExpectBegin()

			exec := mock.ExpectExec(adjustQuery).WithArgs(-2, sqlmock.AnyArg(), "t-1", 7, -2)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			mock.ExpectRollback()

			tx, err := conn.BeginTxx(ctx, nil)
			require.NoError(t, err)

			ok, err := repo.CompareAndAdjustTx(ctx, tx, "t-1", 7, -2)
			require.NoError(t, tx.Rollback())

			if tt.wantErr {
				assert.ErrorIs(t, err, tt.execErr)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tt.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestListAvailableInPeriod_Filters(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter model.AvailabilityFilter
		query  string
		args   []driver.Value
	}{
		{
			name:   "no filter",
			filter: model.AvailabilityFilter{},
			query:  `WHERE tools.status NOT IN \(\$3, \$4\)\s+\) AS candidates`,
			args:   []driver.Value{"2025-06-05", "2025-06-01", model.StatusMaintenance, model.StatusInactive},
		},
		{
			name:   "category and name search",
			filter: model.AvailabilityFilter{CategoryID: 3, Search: "drill"},
			query:  `WHERE tools.status NOT IN \(\$3, \$4\) AND tools.category_id = \$5 AND LOWER\(tools.name\) LIKE LOWER\(\$6\)\s+\) AS candidates`,
			args:   []driver.Value{"2025-06-05", "2025-06-01", model.StatusMaintenance, model.StatusInactive, 3, "%drill%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, mock := newRepository(t)

			mock.ExpectPrepare(tt.query).
				ExpectQuery().
				WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows([]string{"id", "name", "available_in_period"}).AddRow("t-1", "Drill", 2))

			tools, err := repo.ListAvailableInPeriod(context.Background(), start, end, tt.filter)

			require.NoError(t, err)
			require.Len(t, tools, 1)
			assert.Equal(t, "Drill", tools[0].Name)
			assert.Equal(t, 2, tools[0].AvailableInPeriod)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
