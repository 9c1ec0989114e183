package repositories

import (
	"database/sql"
	"errors"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) Create(u *models.User) error {
	err := r.DB.QueryRow(`INSERT INTO users (name, email, phone, address, password_hash, role)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at`,
		u.Name, u.Email, u.Phone, u.Address, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ConflictError{Resource: "user", Msg: "email already registered", Err: err}
	}
	if err != nil {
		return domain.DependencyError{Op: "user insert", Err: err}
	}
	return nil
}

func (r UserRepository) GetByEmail(email string) (models.User, error) {
	var u models.User
	err := r.DB.QueryRow(`SELECT id, name, email, COALESCE(phone,''), COALESCE(address,''), password_hash, role, created_at
		FROM users WHERE email=$1`, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return models.User{}, domain.DependencyError{Op: "user lookup", Err: err}
	}
	return u, nil
}

func (r UserRepository) GetByID(id int64) (models.User, error) {
	var u models.User
	err := r.DB.QueryRow(`SELECT id, name, email, COALESCE(phone,''), COALESCE(address,''), password_hash, role, created_at
		FROM users WHERE id=$1`, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return models.User{}, domain.DependencyError{Op: "user lookup", Err: err}
	}
	return u, nil
}
