package repositories

import (
	"context"
	"database/sql"

	"cabbooking/internal/domain/models"
)

const routeColumns = `id, origin_city, destination_city, origin_slug, destination_slug,
	distance_km, duration_min, active, created_at, updated_at`

type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB { return pick(r.DB) }

func scanRoute(s scanner) (models.Route, error) {
	var rt models.Route
	err := s.Scan(&rt.ID, &rt.OriginCity, &rt.DestinationCity, &rt.OriginSlug, &rt.DestinationSlug,
		&rt.DistanceKM, &rt.DurationMin, &rt.Active, &rt.CreatedAt, &rt.UpdatedAt)
	return rt, err
}

// FindActiveBySlugs resolves an ordered city pair to its active route.
func (r RouteRepository) FindActiveBySlugs(ctx context.Context, originSlug, destinationSlug string) (models.Route, error) {
	rt, err := scanRoute(r.db().QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes
		WHERE origin_slug = ? AND destination_slug = ? AND active = 1 LIMIT 1`, originSlug, destinationSlug))
	return rt, mapErr("route", err)
}

func (r RouteRepository) GetByID(ctx context.Context, id int64) (models.Route, error) {
	rt, err := scanRoute(r.db().QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = ? LIMIT 1`, id))
	return rt, mapErr("route", err)
}

func (r RouteRepository) List(ctx context.Context, activeOnly bool) ([]models.Route, error) {
	q := `SELECT ` + routeColumns + ` FROM routes`
	if activeOnly {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY origin_city, destination_city`

	rows, err := r.db().QueryContext(ctx, q)
	if err != nil {
		return nil, mapErr("route", err)
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, mapErr("route", err)
		}
		out = append(out, rt)
	}
	return out, mapErr("route", rows.Err())
}

func (r RouteRepository) Create(ctx context.Context, rt models.Route) (int64, error) {
	res, err := r.db().ExecContext(ctx, `INSERT INTO routes
		(origin_city, destination_city, origin_slug, destination_slug, distance_km, duration_min, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rt.OriginCity, rt.DestinationCity, rt.OriginSlug, rt.DestinationSlug, rt.DistanceKM, rt.DurationMin, rt.Active)
	if err != nil {
		return 0, mapErr("route", err)
	}
	return res.LastInsertId()
}

func (r RouteRepository) Update(ctx context.Context, rt models.Route) error {
	res, err := r.db().ExecContext(ctx, `UPDATE routes SET
		origin_city = ?, destination_city = ?, origin_slug = ?, destination_slug = ?,
		distance_km = ?, duration_min = ?, active = ?
		WHERE id = ?`,
		rt.OriginCity, rt.DestinationCity, rt.OriginSlug, rt.DestinationSlug, rt.DistanceKM, rt.DurationMin, rt.Active, rt.ID)
	if err != nil {
		return mapErr("route", err)
	}
	return affected("route", res)
}

// Deactivate soft-deletes a route; bookings keep referencing it.
func (r RouteRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `UPDATE routes SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return mapErr("route", err)
	}
	return affected("route", res)
}
