package repositories

import (
	"database/sql"
	"errors"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain/models"
)

type AnnouncementRepository struct {
	DB *sql.DB
}

const announcementColumns = `id, title, body, category, COALESCE(image_url,''), created_at, updated_at`

func (r AnnouncementRepository) Create(a *models.Announcement) error {
	err := r.DB.QueryRow(`INSERT INTO announcements (title, body, category, image_url)
		VALUES ($1,$2,$3,$4) RETURNING id, created_at, updated_at`,
		a.Title, a.Body, a.Category, a.ImageURL,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.DependencyError{Op: "announcement insert", Err: err}
	}
	return nil
}

func (r AnnouncementRepository) GetByID(id int64) (models.Announcement, error) {
	var a models.Announcement
	err := r.DB.QueryRow(`SELECT `+announcementColumns+` FROM announcements WHERE id=$1`, id).Scan(
		&a.ID, &a.Title, &a.Body, &a.Category, &a.ImageURL, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Announcement{}, domain.NotFoundError{Resource: "announcement"}
	}
	if err != nil {
		return models.Announcement{}, domain.DependencyError{Op: "announcement lookup", Err: err}
	}
	return a, nil
}

func (r AnnouncementRepository) List(category string) ([]models.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements`
	args := []any{}
	if category != "" {
		query += ` WHERE category=$1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, domain.DependencyError{Op: "announcement list", Err: err}
	}
	defer rows.Close()

	out := []models.Announcement{}
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.Category, &a.ImageURL, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, domain.DependencyError{Op: "announcement list", Err: err}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DependencyError{Op: "announcement list", Err: err}
	}
	return out, nil
}

func (r AnnouncementRepository) Update(a models.Announcement) error {
	res, err := r.DB.Exec(`UPDATE announcements
		SET title=$1, body=$2, category=$3, image_url=$4, updated_at=now() WHERE id=$5`,
		a.Title, a.Body, a.Category, a.ImageURL, a.ID)
	if err != nil {
		return domain.DependencyError{Op: "announcement update", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.DependencyError{Op: "announcement update", Err: err}
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "announcement"}
	}
	return nil
}

func (r AnnouncementRepository) Delete(id int64) error {
	res, err := r.DB.Exec(`DELETE FROM announcements WHERE id=$1`, id)
	if err != nil {
		return domain.DependencyError{Op: "announcement delete", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.DependencyError{Op: "announcement delete", Err: err}
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "announcement"}
	}
	return nil
}
