package repositories

import (
	"context"
	"database/sql"
	"strings"

	"cabbooking/internal/domain/models"
)

type AdminUserRepository struct {
	DB *sql.DB
}

func (r AdminUserRepository) db() *sql.DB { return pick(r.DB) }

func (r AdminUserRepository) GetByEmail(ctx context.Context, email string) (models.AdminUser, error) {
	var u models.AdminUser
	err := r.db().QueryRowContext(ctx, `SELECT id, email, name, password_hash, role, active, created_at
		FROM admin_users WHERE email = ? LIMIT 1`, strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	return u, mapErr("admin user", err)
}

// Upsert creates the account or resets its name, password and role.
func (r AdminUserRepository) Upsert(ctx context.Context, u models.AdminUser) error {
	_, err := r.db().ExecContext(ctx, `INSERT INTO admin_users (email, name, password_hash, role, active)
		VALUES (?, ?, ?, ?, 1)
		ON DUPLICATE KEY UPDATE name = VALUES(name), password_hash = VALUES(password_hash), role = VALUES(role), active = 1`,
		strings.ToLower(strings.TrimSpace(u.Email)), u.Name, u.PasswordHash, u.Role)
	return mapErr("admin user", err)
}
