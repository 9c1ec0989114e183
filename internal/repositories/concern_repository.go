package repositories

import (
	"database/sql"
	"errors"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain/models"
)

type ConcernRepository struct {
	DB *sql.DB
}

const concernColumns = `id, user_id, category, subject, description,
       COALESCE(photo_ref,''), status, created_at, updated_at`

func (r ConcernRepository) Create(c *models.Concern) error {
	err := r.DB.QueryRow(`INSERT INTO concerns
		(user_id, category, subject, description, photo_ref, status)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at, updated_at`,
		c.UserID, c.Category, c.Subject, c.Description, c.PhotoRef, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.DependencyError{Op: "concern insert", Err: err}
	}
	return nil
}

func (r ConcernRepository) GetByID(id int64) (models.Concern, error) {
	var c models.Concern
	err := r.DB.QueryRow(`SELECT `+concernColumns+` FROM concerns WHERE id=$1`, id).Scan(
		&c.ID, &c.UserID, &c.Category, &c.Subject, &c.Description, &c.PhotoRef, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Concern{}, domain.NotFoundError{Resource: "concern"}
	}
	if err != nil {
		return models.Concern{}, domain.DependencyError{Op: "concern lookup", Err: err}
	}
	return c, nil
}

func (r ConcernRepository) ListByUser(userID int64) ([]models.Concern, error) {
	rows, err := r.DB.Query(`SELECT `+concernColumns+` FROM concerns
		WHERE user_id=$1 ORDER BY created_at DESC LIMIT 200`, userID)
	if err != nil {
		return nil, domain.DependencyError{Op: "concern list", Err: err}
	}
	return collectConcerns(rows)
}

func (r ConcernRepository) ListByStatus(status string) ([]models.Concern, error) {
	query := `SELECT ` + concernColumns + ` FROM concerns`
	args := []any{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, domain.DependencyError{Op: "concern list", Err: err}
	}
	return collectConcerns(rows)
}

func collectConcerns(rows *sql.Rows) ([]models.Concern, error) {
	defer rows.Close()
	out := []models.Concern{}
	for rows.Next() {
		var c models.Concern
		if err := rows.Scan(&c.ID, &c.UserID, &c.Category, &c.Subject, &c.Description, &c.PhotoRef, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, domain.DependencyError{Op: "concern list", Err: err}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DependencyError{Op: "concern list", Err: err}
	}
	return out, nil
}

// SetStatus is a compare-and-swap on the current status so concurrent
// admin updates cannot skip or rewind a step.
func (r ConcernRepository) SetStatus(id int64, from, to string) error {
	res, err := r.DB.Exec(`UPDATE concerns SET status=$1, updated_at=now()
		WHERE id=$2 AND status=$3`, to, id, from)
	if err != nil {
		return domain.DependencyError{Op: "concern update", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.DependencyError{Op: "concern update", Err: err}
	}
	if n == 0 {
		return domain.InvalidStateError{Resource: "concern", Msg: "concern status changed concurrently"}
	}
	return nil
}
