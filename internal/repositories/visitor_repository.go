package repositories

import (
	"database/sql"
	"errors"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain/models"
)

type VisitorRepository struct {
	DB *sql.DB
}

const visitorColumns = `id, user_id, visitor_name, visit_date::text,
       COALESCE(plate_number,''), COALESCE(purpose,''), pass_code, created_at`

func (r VisitorRepository) Create(v *models.Visitor) error {
	err := r.DB.QueryRow(`INSERT INTO visitors
		(user_id, visitor_name, visit_date, plate_number, purpose, pass_code)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at`,
		v.UserID, v.VisitorName, v.VisitDate, v.PlateNumber, v.Purpose, v.PassCode,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return domain.DependencyError{Op: "visitor insert", Err: err}
	}
	return nil
}

func (r VisitorRepository) GetByID(id int64) (models.Visitor, error) {
	var v models.Visitor
	err := r.DB.QueryRow(`SELECT `+visitorColumns+` FROM visitors WHERE id=$1`, id).Scan(
		&v.ID, &v.UserID, &v.VisitorName, &v.VisitDate, &v.PlateNumber, &v.Purpose, &v.PassCode, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Visitor{}, domain.NotFoundError{Resource: "visitor"}
	}
	if err != nil {
		return models.Visitor{}, domain.DependencyError{Op: "visitor lookup", Err: err}
	}
	return v, nil
}

func (r VisitorRepository) ListByUser(userID int64) ([]models.Visitor, error) {
	rows, err := r.DB.Query(`SELECT `+visitorColumns+` FROM visitors
		WHERE user_id=$1 ORDER BY visit_date DESC, created_at DESC LIMIT 200`, userID)
	if err != nil {
		return nil, domain.DependencyError{Op: "visitor list", Err: err}
	}
	return collectVisitors(rows)
}

// ListByDate returns all visitors expected on a date, for the guardhouse.
func (r VisitorRepository) ListByDate(date string) ([]models.Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors`
	args := []any{}
	if date != "" {
		query += ` WHERE visit_date=$1`
		args = append(args, date)
	}
	query += ` ORDER BY created_at DESC LIMIT 500`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, domain.DependencyError{Op: "visitor list", Err: err}
	}
	return collectVisitors(rows)
}

func collectVisitors(rows *sql.Rows) ([]models.Visitor, error) {
	defer rows.Close()
	out := []models.Visitor{}
	for rows.Next() {
		var v models.Visitor
		if err := rows.Scan(&v.ID, &v.UserID, &v.VisitorName, &v.VisitDate, &v.PlateNumber, &v.Purpose, &v.PassCode, &v.CreatedAt); err != nil {
			return nil, domain.DependencyError{Op: "visitor list", Err: err}
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DependencyError{Op: "visitor list", Err: err}
	}
	return out, nil
}
