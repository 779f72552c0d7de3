package orderControllers

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/John-Gaitho/branded-in-grace-api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

// identity stands in for the token middleware in tests.
func identity(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
	}
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	db, mock := setupMockDB(t)

	r := gin.New()
	r.PUT("/api/orders/:orderID", identity("admin-1", "admin"),
		UpdateOrderStatus(db, NewHub(zap.NewNop()), zap.NewNop()))

	req := httptest.NewRequest(http.MethodPut, "/api/orders/5", strings.NewReader(`{"status":"shipped"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "an invalid status must be rejected before any query")
}

func TestUpdateOrderStatusMutatesOnlyStatus(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "total_amount"}).
			AddRow(5, "pending", 3400.0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "order_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity"}).
			AddRow(1, 5, 1, 2))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET "status"=$1,"updated_at"=$2`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := gin.New()
	r.PUT("/api/orders/:orderID", identity("admin-1", "admin"),
		UpdateOrderStatus(db, NewHub(zap.NewNop()), zap.NewNop()))

	req := httptest.NewRequest(http.MethodPut, "/api/orders/5", strings.NewReader(`{"status":"processing"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"processing"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	r := gin.New()
	r.PUT("/api/orders/:orderID", identity("admin-1", "admin"),
		UpdateOrderStatus(db, NewHub(zap.NewNop()), zap.NewNop()))

	req := httptest.NewRequest(http.MethodPut, "/api/orders/99", strings.NewReader(`{"status":"completed"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOrdersScopedToUser(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE user_id`)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount"}).
			AddRow(5, "user-1", 3400.0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "order_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	r := gin.New()
	r.GET("/api/orders/", identity("user-1", "user"), ListOrders(db))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersAdminSeesEverything(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" ORDER BY created_at DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount"}).
			AddRow(5, "user-1", 3400.0).
			AddRow(6, "user-2", 500.0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "order_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	r := gin.New()
	r.GET("/api/orders/", identity("admin-1", "admin"), ListOrders(db))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
