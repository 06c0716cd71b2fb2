package models

import "time"

type Driver struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CarType   CarType   `json:"car_type"`
	VehicleNo string    `json:"vehicle_no"`
	LicenseNo string    `json:"license_no"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminUser is a back-office account. PasswordHash is a bcrypt hash.
type AdminUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
