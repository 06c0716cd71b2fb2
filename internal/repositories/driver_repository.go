package repositories

import (
	"context"
	"database/sql"

	"cabbooking/internal/domain/models"
)

type DriverRepository struct {
	DB *sql.DB
}

func (r DriverRepository) db() *sql.DB { return pick(r.DB) }

func scanDriver(s scanner) (models.Driver, error) {
	var d models.Driver
	err := s.Scan(&d.ID, &d.Name, &d.Phone, &d.CarType, &d.VehicleNo, &d.LicenseNo, &d.Active, &d.CreatedAt)
	return d, err
}

func (r DriverRepository) List(ctx context.Context) ([]models.Driver, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT id, name, phone, car_type, vehicle_no, license_no, active, created_at
		FROM drivers ORDER BY id DESC`)
	if err != nil {
		return nil, mapErr("driver", err)
	}
	defer rows.Close()

	out := []models.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, mapErr("driver", err)
		}
		out = append(out, d)
	}
	return out, mapErr("driver", rows.Err())
}

func (r DriverRepository) GetByID(ctx context.Context, id int64) (models.Driver, error) {
	d, err := scanDriver(r.db().QueryRowContext(ctx, `SELECT id, name, phone, car_type, vehicle_no, license_no, active, created_at
		FROM drivers WHERE id = ? LIMIT 1`, id))
	return d, mapErr("driver", err)
}

func (r DriverRepository) Create(ctx context.Context, d models.Driver) (int64, error) {
	res, err := r.db().ExecContext(ctx, `INSERT INTO drivers (name, phone, car_type, vehicle_no, license_no, active)
		VALUES (?, ?, ?, ?, ?, ?)`, d.Name, d.Phone, string(d.CarType), d.VehicleNo, d.LicenseNo, d.Active)
	if err != nil {
		return 0, mapErr("driver", err)
	}
	return res.LastInsertId()
}

func (r DriverRepository) Update(ctx context.Context, d models.Driver) error {
	res, err := r.db().ExecContext(ctx, `UPDATE drivers SET name = ?, phone = ?, car_type = ?, vehicle_no = ?, license_no = ?, active = ?
		WHERE id = ?`, d.Name, d.Phone, string(d.CarType), d.VehicleNo, d.LicenseNo, d.Active, d.ID)
	if err != nil {
		return mapErr("driver", err)
	}
	return affected("driver", res)
}

func (r DriverRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `UPDATE drivers SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return mapErr("driver", err)
	}
	return affected("driver", res)
}
