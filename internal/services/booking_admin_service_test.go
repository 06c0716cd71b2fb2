package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
	"cabbooking/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

var bookingCols = []string{"id", "route_id", "origin_text", "destination_text", "pickup_at", "car_type",
	"fare_base_inr", "fare_locked_inr", "payment_mode", "status", "customer_name", "customer_phone",
	"discount_code", "driver_id", "utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"idempotency_key", "created_at", "updated_at"}

func bookingRow(id int64, status models.BookingStatus, driverID any) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingCols).AddRow(id, 1, "Raipur", "Bilaspur", now.Add(24*time.Hour), "SEDAN",
		1400, 1400, "COD", string(status), "Asha Verma", "9876543210",
		"", driverID, "", "", "", "", "", "k1", now, now)
}

func newAdminService(t *testing.T) (BookingAdminService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return BookingAdminService{
		Bookings: repositories.BookingRepository{DB: db},
		Drivers:  repositories.DriverRepository{DB: db},
	}, mock
}

func TestAdminUpdateStatus(t *testing.T) {
	svc, mock := newAdminService(t)
	mock.ExpectQuery("FROM bookings WHERE id = \\?").WithArgs(int64(5)).
		WillReturnRows(bookingRow(5, models.StatusAssigned, int64(3)))
	mock.ExpectExec("UPDATE bookings SET status = \\? WHERE id = \\? AND status = \\?").
		WithArgs("COMPLETED", int64(5), "ASSIGNED").
		WillReturnResult(sqlmock.NewResult(0, 1))

	b, err := svc.UpdateStatus(context.Background(), 5, models.StatusCompleted)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if b.Status != models.StatusCompleted {
		t.Fatalf("unexpected status %s", b.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdminTerminalStatusIsImmutable(t *testing.T) {
	svc, mock := newAdminService(t)
	mock.ExpectQuery("FROM bookings WHERE id = \\?").
		WillReturnRows(bookingRow(5, models.StatusCancelled, nil))

	_, err := svc.UpdateStatus(context.Background(), 5, models.StatusPending)
	var conflict domain.ConflictError
	if !errors.As(err, &conflict) || conflict.Code != "terminal_status" {
		t.Fatalf("expected terminal_status conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected update issued: %v", err)
	}
}

func TestAdminInvalidTransition(t *testing.T) {
	svc, mock := newAdminService(t)
	mock.ExpectQuery("FROM bookings WHERE id = \\?").
		WillReturnRows(bookingRow(5, models.StatusPending, nil))

	_, err := svc.UpdateStatus(context.Background(), 5, models.StatusCompleted)
	var conflict domain.ConflictError
	if !errors.As(err, &conflict) || conflict.Code != "invalid_transition" {
		t.Fatalf("expected invalid_transition conflict, got %v", err)
	}
}

func TestAdminAssignedNeedsDriver(t *testing.T) {
	svc, mock := newAdminService(t)
	mock.ExpectQuery("FROM bookings WHERE id = \\?").
		WillReturnRows(bookingRow(5, models.StatusPending, nil))

	_, err := svc.UpdateStatus(context.Background(), 5, models.StatusAssigned)
	var conflict domain.ConflictError
	if !errors.As(err, &conflict) || conflict.Code != "driver_required" {
		t.Fatalf("expected driver_required conflict, got %v", err)
	}
}

func TestAdminAssignDriver(t *testing.T) {
	svc, mock := newAdminService(t)
	now := time.Now()
	mock.ExpectQuery("FROM bookings WHERE id = \\?").
		WillReturnRows(bookingRow(5, models.StatusPending, nil))
	mock.ExpectQuery("FROM drivers WHERE id = \\?").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "car_type", "vehicle_no", "license_no", "active", "created_at"}).
			AddRow(3, "Ravi", "9123456789", "SEDAN", "CG04AB1234", "DL-1", true, now))
	mock.ExpectExec("UPDATE bookings SET driver_id = \\?, status = \\? WHERE id = \\? AND status = \\?").
		WithArgs(int64(3), "ASSIGNED", int64(5), "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))

	b, err := svc.Assign(context.Background(), 5, 3)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if b.Status != models.StatusAssigned || b.DriverID == nil || *b.DriverID != 3 {
		t.Fatalf("unexpected booking %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdminAssignInactiveDriver(t *testing.T) {
	svc, mock := newAdminService(t)
	mock.ExpectQuery("FROM bookings WHERE id = \\?").
		WillReturnRows(bookingRow(5, models.StatusPending, nil))
	mock.ExpectQuery("FROM drivers WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "car_type", "vehicle_no", "license_no", "active", "created_at"}).
			AddRow(3, "Ravi", "9123456789", "SEDAN", "CG04AB1234", "DL-1", false, time.Now()))

	if _, err := svc.Assign(context.Background(), 5, 3); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdminGetMissingBooking(t *testing.T) {
	svc, mock := newAdminService(t)
	mock.ExpectQuery("FROM bookings WHERE id = \\?").WillReturnRows(sqlmock.NewRows(bookingCols))

	if _, err := svc.Get(context.Background(), 9); !domain.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
