package repositories

import (
	"context"
	"database/sql"

	"cabbooking/internal/domain/models"
)

type CityRepository struct {
	DB *sql.DB
}

func (r CityRepository) db() *sql.DB { return pick(r.DB) }

func scanCity(s scanner) (models.City, error) {
	var c models.City
	err := s.Scan(&c.ID, &c.Name, &c.Slug, &c.State, &c.Active, &c.CreatedAt)
	return c, err
}

func (r CityRepository) List(ctx context.Context, activeOnly bool) ([]models.City, error) {
	q := `SELECT id, name, slug, state, active, created_at FROM cities`
	if activeOnly {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY name`
	rows, err := r.db().QueryContext(ctx, q)
	if err != nil {
		return nil, mapErr("city", err)
	}
	defer rows.Close()

	out := []models.City{}
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, mapErr("city", err)
		}
		out = append(out, c)
	}
	return out, mapErr("city", rows.Err())
}

func (r CityRepository) Create(ctx context.Context, c models.City) (int64, error) {
	res, err := r.db().ExecContext(ctx, `INSERT INTO cities (name, slug, state, active) VALUES (?, ?, ?, ?)`,
		c.Name, c.Slug, c.State, c.Active)
	if err != nil {
		return 0, mapErr("city", err)
	}
	return res.LastInsertId()
}

func (r CityRepository) Update(ctx context.Context, c models.City) error {
	res, err := r.db().ExecContext(ctx, `UPDATE cities SET name = ?, slug = ?, state = ?, active = ? WHERE id = ?`,
		c.Name, c.Slug, c.State, c.Active, c.ID)
	if err != nil {
		return mapErr("city", err)
	}
	return affected("city", res)
}

func (r CityRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `UPDATE cities SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return mapErr("city", err)
	}
	return affected("city", res)
}
