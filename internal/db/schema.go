package db

import (
	"context"
	"fmt"
)

// Schema is applied in order; every statement is idempotent.
var Schema = []struct {
	Table string
	DDL   string
}{
	{"cities", `
CREATE TABLE IF NOT EXISTS cities (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(120) NOT NULL,
	slug VARCHAR(140) NOT NULL,
	state VARCHAR(120) NOT NULL DEFAULT '',
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_city_slug (slug)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"routes", `
CREATE TABLE IF NOT EXISTS routes (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	origin_city VARCHAR(120) NOT NULL,
	destination_city VARCHAR(120) NOT NULL,
	origin_slug VARCHAR(140) NOT NULL,
	destination_slug VARCHAR(140) NOT NULL,
	distance_km DECIMAL(8,2) NOT NULL DEFAULT 0,
	duration_min INT NOT NULL DEFAULT 0,
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_route_pair (origin_slug, destination_slug)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"fares", `
CREATE TABLE IF NOT EXISTS fares (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	route_id BIGINT NOT NULL,
	car_type VARCHAR(32) NOT NULL,
	base_fare_inr BIGINT NOT NULL,
	night_surcharge_pct DECIMAL(5,2) NOT NULL DEFAULT 0,
	UNIQUE KEY uniq_route_car (route_id, car_type),
	CONSTRAINT fk_fares_route FOREIGN KEY (route_id) REFERENCES routes(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"offers", `
CREATE TABLE IF NOT EXISTS offers (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	code VARCHAR(40) NOT NULL,
	discount_type VARCHAR(8) NOT NULL,
	value DECIMAL(10,2) NOT NULL,
	cap_inr BIGINT NULL,
	valid_from DATETIME NULL,
	valid_to DATETIME NULL,
	conditions JSON NULL,
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_offer_code (code)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"drivers", `
CREATE TABLE IF NOT EXISTS drivers (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(120) NOT NULL,
	phone VARCHAR(16) NOT NULL,
	car_type VARCHAR(32) NOT NULL,
	vehicle_no VARCHAR(32) NOT NULL DEFAULT '',
	license_no VARCHAR(40) NOT NULL DEFAULT '',
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_driver_phone (phone)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"admin_users", `
CREATE TABLE IF NOT EXISTS admin_users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	email VARCHAR(190) NOT NULL,
	name VARCHAR(120) NOT NULL,
	password_hash VARCHAR(100) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'admin',
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_admin_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	route_id BIGINT NOT NULL,
	origin_text VARCHAR(200) NOT NULL,
	destination_text VARCHAR(200) NOT NULL,
	pickup_at DATETIME NOT NULL,
	car_type VARCHAR(32) NOT NULL,
	fare_base_inr BIGINT NOT NULL,
	fare_locked_inr BIGINT NOT NULL,
	payment_mode VARCHAR(16) NOT NULL,
	status VARCHAR(16) NOT NULL,
	customer_name VARCHAR(120) NOT NULL,
	customer_phone VARCHAR(16) NOT NULL,
	discount_code VARCHAR(40) NULL,
	driver_id BIGINT NULL,
	utm_source VARCHAR(120) NULL,
	utm_medium VARCHAR(120) NULL,
	utm_campaign VARCHAR(120) NULL,
	utm_term VARCHAR(120) NULL,
	utm_content VARCHAR(120) NULL,
	idempotency_key VARCHAR(128) NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_booking_idem (idempotency_key),
	KEY idx_booking_status (status),
	KEY idx_booking_phone (customer_phone),
	CONSTRAINT fk_bookings_route FOREIGN KEY (route_id) REFERENCES routes(id),
	CONSTRAINT fk_bookings_driver FOREIGN KEY (driver_id) REFERENCES drivers(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

// Migrate creates missing tables. Existing tables are left untouched.
func Migrate(ctx context.Context, q interface {
	QueryRower
	Execer
}) ([]string, error) {
	created := []string{}
	for _, s := range Schema {
		if HasTable(ctx, q, s.Table) {
			continue
		}
		if _, err := q.ExecContext(ctx, s.DDL); err != nil {
			return created, fmt.Errorf("create %s: %w", s.Table, err)
		}
		created = append(created, s.Table)
	}
	return created, nil
}
