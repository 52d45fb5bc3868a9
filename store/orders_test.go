package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	models "github.com/blee0617/nd035-c4-Security-and-DevOps/model"
)

func TestCreateOrder_Success(t *testing.T) {
	s, mock := newMock(t)

	createdAt := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO user_orders (user_id, total) VALUES ($1, $2) RETURNING id, created_at`)).
		WithArgs(int64(1), "5").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(77), createdAt))
	mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO order_items`))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WithArgs(int64(77), int64(1), "LEGO", "5", "Colored blocks").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	o := &models.UserOrder{
		UserID: 1,
		Items:  []models.Item{{ID: 1, Name: "LEGO", Price: decimal.NewFromInt(5), Description: "Colored blocks"}},
		Total:  decimal.NewFromInt(5),
	}
	if err := s.CreateOrder(context.Background(), o); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if o.ID != 77 || !o.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected order: %+v", o)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListOrdersByUserID_GroupsItems(t *testing.T) {
	s, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_orders WHERE user_id = $1 ORDER BY id`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total", "created_at"}).
			AddRow(int64(10), int64(1), "10.00", now).
			AddRow(int64(11), int64(1), "2.99", now))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items oi`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "item_id", "name", "price", "description"}).
			AddRow(int64(10), int64(3), "LEGO", "5.00", "").
			AddRow(int64(10), int64(3), "LEGO", "5.00", "").
			AddRow(int64(11), int64(1), "Round Widget", "2.99", "A widget that is round"))

	orders, err := s.ListOrdersByUserID(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListOrdersByUserID failed: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != 10 || orders[1].ID != 11 {
		t.Fatalf("unexpected orders: %+v", orders)
	}
	if len(orders[0].Items) != 2 || len(orders[1].Items) != 1 {
		t.Fatalf("unexpected item grouping: %+v", orders)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListOrdersByUserID_NoOrders(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_orders WHERE user_id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total", "created_at"}))

	orders, err := s.ListOrdersByUserID(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders == nil || len(orders) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", orders)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
