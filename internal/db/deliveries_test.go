package db

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasarpush/internal/dispatch"
)

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	DB = sqlx.NewDb(mockDB, "postgres")
	return mock
}

func TestRecordDelivery(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO deliveries").
		WithArgs("order-new", "New Order Received", 2, 1, pq.Array([]string{"t2"})).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := RecordDelivery("order-new", "New Order Received", dispatch.Outcome{
		Attempted:    2,
		Delivered:    1,
		FailedTokens: []string{"t2"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDeliverySkippedDispatch(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO deliveries").
		WithArgs("manual", "Hello", 0, 0, pq.Array([]string(nil))).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := RecordDelivery("manual", "Hello", dispatch.Outcome{})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentDeliveries(t *testing.T) {
	mock := newMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "event_kind", "title", "attempted", "delivered", "failed_tokens", "created_at"}).
		AddRow(2, "stock-update", "Stock Updated", 3, 3, "{}", now).
		AddRow(1, "order-new", "New Order Received", 2, 1, "{t2}", now)

	mock.ExpectQuery("SELECT id, event_kind, title").
		WithArgs(50).
		WillReturnRows(rows)

	deliveries, err := RecentDeliveries(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, deliveries, 2)
	assert.Equal(t, "stock-update", deliveries[0].EventKind)
	assert.Equal(t, []string{"t2"}, []string(deliveries[1].FailedTokens))
	assert.NoError(t, mock.ExpectationsWereMet())
}
