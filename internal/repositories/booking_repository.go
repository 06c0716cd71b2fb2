package repositories

import (
	"context"
	"database/sql"
	"strings"

	intdb "cabbooking/internal/db"
	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
)

const bookingColumns = `id, route_id, origin_text, destination_text, pickup_at, car_type,
	fare_base_inr, fare_locked_inr, payment_mode, status, customer_name, customer_phone,
	COALESCE(discount_code, ''), driver_id,
	COALESCE(utm_source, ''), COALESCE(utm_medium, ''), COALESCE(utm_campaign, ''),
	COALESCE(utm_term, ''), COALESCE(utm_content, ''), COALESCE(idempotency_key, ''),
	created_at, updated_at`

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB { return pick(r.DB) }

func scanBooking(s scanner) (models.Booking, error) {
	var (
		b        models.Booking
		driverID sql.NullInt64
	)
	err := s.Scan(&b.ID, &b.RouteID, &b.OriginText, &b.DestinationText, &b.PickupAt, &b.CarType,
		&b.FareBaseINR, &b.FareLockedINR, &b.PaymentMode, &b.Status, &b.CustomerName, &b.CustomerPhone,
		&b.DiscountCode, &driverID,
		&b.UTMSource, &b.UTMMedium, &b.UTMCampaign, &b.UTMTerm, &b.UTMContent, &b.IdempotencyKey,
		&b.CreatedAt, &b.UpdatedAt)
	if driverID.Valid {
		v := driverID.Int64
		b.DriverID = &v
	}
	return b, err
}

// Create inserts one booking row. A repeated idempotency key surfaces as ConflictError.
func (r BookingRepository) Create(ctx context.Context, b models.Booking) (int64, error) {
	res, err := r.db().ExecContext(ctx, `INSERT INTO bookings
		(route_id, origin_text, destination_text, pickup_at, car_type, fare_base_inr, fare_locked_inr,
		 payment_mode, status, customer_name, customer_phone, discount_code,
		 utm_source, utm_medium, utm_campaign, utm_term, utm_content, idempotency_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.RouteID, b.OriginText, b.DestinationText, b.PickupAt.UTC(), string(b.CarType), b.FareBaseINR, b.FareLockedINR,
		b.PaymentMode, string(b.Status), b.CustomerName, b.CustomerPhone, intdb.NullIfEmpty(b.DiscountCode),
		intdb.NullIfEmpty(b.UTMSource), intdb.NullIfEmpty(b.UTMMedium), intdb.NullIfEmpty(b.UTMCampaign),
		intdb.NullIfEmpty(b.UTMTerm), intdb.NullIfEmpty(b.UTMContent), intdb.NullIfEmpty(b.IdempotencyKey))
	if err != nil {
		return 0, mapErr("booking", err)
	}
	return res.LastInsertId()
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	b, err := scanBooking(r.db().QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? LIMIT 1`, id))
	return b, mapErr("booking", err)
}

func (r BookingRepository) GetByIdempotencyKey(ctx context.Context, key string) (models.Booking, error) {
	b, err := scanBooking(r.db().QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE idempotency_key = ? LIMIT 1`, key))
	return b, mapErr("booking", err)
}

// List returns one page of bookings, newest first, plus the filtered total.
func (r BookingRepository) List(ctx context.Context, f models.BookingFilter, p domain.Pagination) ([]models.Booking, int, error) {
	p = p.Normalize()
	where := []string{"1=1"}
	args := []any{}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Phone != "" {
		where = append(where, "customer_phone = ?")
		args = append(args, f.Phone)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapErr("booking", err)
	}

	rows, err := r.db().QueryContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE `+cond+
		` ORDER BY id DESC LIMIT ? OFFSET ?`, append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, mapErr("booking", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, mapErr("booking", err)
		}
		out = append(out, b)
	}
	return out, total, mapErr("booking", rows.Err())
}

// UpdateStatus moves a booking from one status to another. The WHERE on the
// current status makes concurrent admin edits lose instead of overwrite.
func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to models.BookingStatus) error {
	res, err := r.db().ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return mapErr("booking", err)
	}
	if err := affected("booking", res); err != nil {
		return domain.ConflictError{Resource: "booking", Code: "stale_status", Msg: "status changed concurrently, reload and retry"}
	}
	return nil
}

// AssignDriver sets the driver and marks the booking ASSIGNED.
func (r BookingRepository) AssignDriver(ctx context.Context, id, driverID int64, from models.BookingStatus) error {
	res, err := r.db().ExecContext(ctx, `UPDATE bookings SET driver_id = ?, status = ? WHERE id = ? AND status = ?`,
		driverID, string(models.StatusAssigned), id, string(from))
	if err != nil {
		return mapErr("booking", err)
	}
	if err := affected("booking", res); err != nil {
		return domain.ConflictError{Resource: "booking", Code: "stale_status", Msg: "status changed concurrently, reload and retry"}
	}
	return nil
}
