package repositories

import (
	"context"
	"database/sql"

	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
)

type FareRepository struct {
	DB *sql.DB
}

func (r FareRepository) db() *sql.DB { return pick(r.DB) }

func (r FareRepository) Get(ctx context.Context, routeID int64, carType models.CarType) (models.Fare, error) {
	var f models.Fare
	err := r.db().QueryRowContext(ctx, `SELECT id, route_id, car_type, base_fare_inr, night_surcharge_pct
		FROM fares WHERE route_id = ? AND car_type = ? LIMIT 1`, routeID, string(carType)).
		Scan(&f.ID, &f.RouteID, &f.CarType, &f.BaseFareINR, &f.NightSurchargePct)
	return f, mapErr("fare", err)
}

func (r FareRepository) ListByRoute(ctx context.Context, routeID int64) ([]models.Fare, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT id, route_id, car_type, base_fare_inr, night_surcharge_pct
		FROM fares WHERE route_id = ? ORDER BY base_fare_inr`, routeID)
	if err != nil {
		return nil, mapErr("fare", err)
	}
	defer rows.Close()

	out := []models.Fare{}
	for rows.Next() {
		var f models.Fare
		if err := rows.Scan(&f.ID, &f.RouteID, &f.CarType, &f.BaseFareINR, &f.NightSurchargePct); err != nil {
			return nil, mapErr("fare", err)
		}
		out = append(out, f)
	}
	return out, mapErr("fare", rows.Err())
}

// Upsert writes all fares for one route atomically.
func (r FareRepository) Upsert(ctx context.Context, routeID int64, fares []models.Fare) error {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range fares {
		if _, err := tx.ExecContext(ctx, `INSERT INTO fares (route_id, car_type, base_fare_inr, night_surcharge_pct)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE base_fare_inr = VALUES(base_fare_inr), night_surcharge_pct = VALUES(night_surcharge_pct)`,
			routeID, string(f.CarType), f.BaseFareINR, f.NightSurchargePct); err != nil {
			return mapErr("fare", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}
