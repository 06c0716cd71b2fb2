package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
)

const offerColumns = `id, code, discount_type, value, cap_inr, valid_from, valid_to, conditions, active, created_at`

type OfferRepository struct {
	DB *sql.DB
}

func (r OfferRepository) db() *sql.DB { return pick(r.DB) }

func scanOffer(s scanner) (models.Offer, error) {
	var (
		o          models.Offer
		capINR     sql.NullInt64
		from, to   sql.NullTime
		conditions []byte
	)
	if err := s.Scan(&o.ID, &o.Code, &o.Type, &o.Value, &capINR, &from, &to, &conditions, &o.Active, &o.CreatedAt); err != nil {
		return o, err
	}
	if capINR.Valid {
		v := capINR.Int64
		o.CapINR = &v
	}
	if from.Valid {
		v := from.Time
		o.ValidFrom = &v
	}
	if to.Valid {
		v := to.Time
		o.ValidTo = &v
	}
	rules, err := models.ParseConditions(conditions)
	if err != nil {
		return o, domain.InternalError{Msg: "offer " + o.Code + " has unreadable conditions", Err: err}
	}
	o.Conditions = rules
	return o, nil
}

// GetByCode matches case-insensitively; codes are stored upper-case.
func (r OfferRepository) GetByCode(ctx context.Context, code string) (models.Offer, error) {
	o, err := scanOffer(r.db().QueryRowContext(ctx, `SELECT `+offerColumns+` FROM offers WHERE code = ? LIMIT 1`,
		strings.ToUpper(strings.TrimSpace(code))))
	if domain.IsInternal(err) {
		return o, err
	}
	return o, mapErr("offer", err)
}

func (r OfferRepository) GetByID(ctx context.Context, id int64) (models.Offer, error) {
	o, err := scanOffer(r.db().QueryRowContext(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = ? LIMIT 1`, id))
	if domain.IsInternal(err) {
		return o, err
	}
	return o, mapErr("offer", err)
}

func (r OfferRepository) List(ctx context.Context) ([]models.Offer, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+offerColumns+` FROM offers ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, mapErr("offer", err)
	}
	defer rows.Close()

	out := []models.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			if domain.IsInternal(err) {
				return nil, err
			}
			return nil, mapErr("offer", err)
		}
		out = append(out, o)
	}
	return out, mapErr("offer", rows.Err())
}

func offerArgs(o models.Offer) ([]any, error) {
	cond, err := json.Marshal(o.Conditions)
	if err != nil {
		return nil, err
	}
	var capINR, from, to any
	if o.CapINR != nil {
		capINR = *o.CapINR
	}
	if o.ValidFrom != nil {
		from = o.ValidFrom.UTC()
	}
	if o.ValidTo != nil {
		to = o.ValidTo.UTC()
	}
	return []any{strings.ToUpper(o.Code), string(o.Type), o.Value, capINR, from, to, string(cond), o.Active}, nil
}

func (r OfferRepository) Create(ctx context.Context, o models.Offer) (int64, error) {
	args, err := offerArgs(o)
	if err != nil {
		return 0, domain.ValidationError{Field: "conditions", Err: err}
	}
	res, err := r.db().ExecContext(ctx, `INSERT INTO offers
		(code, discount_type, value, cap_inr, valid_from, valid_to, conditions, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return 0, mapErr("offer", err)
	}
	return res.LastInsertId()
}

func (r OfferRepository) Update(ctx context.Context, o models.Offer) error {
	args, err := offerArgs(o)
	if err != nil {
		return domain.ValidationError{Field: "conditions", Err: err}
	}
	res, err := r.db().ExecContext(ctx, `UPDATE offers SET
		code = ?, discount_type = ?, value = ?, cap_inr = ?, valid_from = ?, valid_to = ?, conditions = ?, active = ?
		WHERE id = ?`, append(args, o.ID)...)
	if err != nil {
		return mapErr("offer", err)
	}
	return affected("offer", res)
}

func (r OfferRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `UPDATE offers SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return mapErr("offer", err)
	}
	return affected("offer", res)
}
