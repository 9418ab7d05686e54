package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/sitebook/internal/models"
)

// FileRepo handles metadata of stored project files
type FileRepo struct {
	db DBTX
}

const fileColumns = `id, client_id, category, name, object_key, url, content_type, size, annotations, uploaded_at`

func scanFile(row interface{ Scan(...any) error }) (*models.ProjectFile, error) {
	f := &models.ProjectFile{}
	var category string
	var uploaded sql.NullTime
	if err := row.Scan(&f.ID, &f.ClientID, &category, &f.Name, &f.ObjectKey, &f.URL, &f.ContentType, &f.Size, &f.Annotations, &uploaded); err != nil {
		return nil, err
	}
	f.Category = models.FileCategory(category)
	f.UploadedAt = NullTimeToTime(uploaded)
	return f, nil
}

// Create records a stored file
func (r *FileRepo) Create(ctx context.Context, f *models.ProjectFile) (*models.ProjectFile, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO project_files (client_id, category, name, object_key, url, content_type, size)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ClientID, string(f.Category), f.Name, f.ObjectKey, f.URL, f.ContentType, f.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to record file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, f.ClientID, int(id))
}

// GetByID retrieves a file of a client
func (r *FileRepo) GetByID(ctx context.Context, clientID, id int) (*models.ProjectFile, error) {
	f, err := scanFile(r.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM project_files WHERE id = ? AND client_id = ?`, id, clientID))
	if err != nil {
		return nil, notFound(err, "file", id)
	}
	return f, nil
}

// ListByClient returns a client's files, optionally of one category, newest first
func (r *FileRepo) ListByClient(ctx context.Context, clientID int, category models.FileCategory) ([]*models.ProjectFile, error) {
	query := `SELECT ` + fileColumns + ` FROM project_files WHERE client_id = ?`
	args := []any{clientID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY uploaded_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*models.ProjectFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// SetAnnotations stores the serialized drawing of a blueprint
func (r *FileRepo) SetAnnotations(ctx context.Context, clientID, id int, data []byte) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE project_files SET annotations = ? WHERE id = ? AND client_id = ?`, data, id, clientID)
	if err != nil {
		return fmt.Errorf("failed to save annotations of file %d: %w", id, err)
	}
	return requireAffected(res, "file", id)
}

// Delete removes a file record
func (r *FileRepo) Delete(ctx context.Context, clientID, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM project_files WHERE id = ? AND client_id = ?`, id, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete file %d: %w", id, err)
	}
	return requireAffected(res, "file", id)
}
