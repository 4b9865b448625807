package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resumehub/internal/model"
	"resumehub/internal/store"
)

// viewed_by and selected_by are aggregated from their child tables so a
// single row carries the full HR state.
const resumeColumns = `r.id, r.file_name, r.stored_name, r.file_url, r.uploaded_by, r.college_id, r.college_name,
	r.department, r.state, r.district, r.content, r.viewed, r.uploaded_at, r.created_at, r.updated_at,
	COALESCE((SELECT array_agg(v.viewer_id ORDER BY v.viewed_at, v.viewer_id)
		FROM resume_views v WHERE v.resume_id = r.id), '{}'::text[]),
	COALESCE((SELECT json_agg(json_build_object('hrId', s.hr_id, 'selected', s.selected) ORDER BY s.created_at, s.hr_id)
		FROM resume_selections s WHERE s.resume_id = r.id), '[]'::json)`

// Repository persists resumes in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a repo.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert stores a new record and fills its id and timestamps.
func (r *Repository) Insert(ctx context.Context, res *model.Resume) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if res.UploadedAt.IsZero() {
		res.UploadedAt = now
	}
	res.CreatedAt, res.UpdatedAt = now, now
	res.ViewedBy = []string{}
	res.SelectedBy = []model.Selection{}

	_, err := r.db.Exec(ctx, `
		INSERT INTO resumes (id, file_name, stored_name, file_url, uploaded_by, college_id, college_name,
			department, state, district, content, viewed, uploaded_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, res.ID, res.FileName, res.StoredName, res.FileURL, string(res.UploadedBy), res.CollegeID, res.CollegeName,
		res.Department, res.State, res.District, res.Content, res.Viewed, res.UploadedAt, res.CreatedAt, res.UpdatedAt)
	if store.IsUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

// Get returns nil when no record has id.
func (r *Repository) Get(ctx context.Context, id string) (*model.Resume, error) {
	res, err := scanResume(r.db.QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes r WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

// Delete removes a record and, by cascade, its views and selections.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Search matches query as a literal, case-insensitive substring of content.
func (r *Repository) Search(ctx context.Context, query, collegeID string) ([]model.Resume, error) {
	return r.list(ctx, `WHERE strpos(lower(r.content), lower($1)) > 0 AND ($2 = '' OR r.college_id = $2)
		ORDER BY r.created_at DESC, r.id`, query, collegeID)
}

func (r *Repository) ListByCollege(ctx context.Context, collegeID string) ([]model.Resume, error) {
	return r.list(ctx, `WHERE r.college_id = $1 ORDER BY r.created_at DESC, r.id`, collegeID)
}

func (r *Repository) ListAll(ctx context.Context) ([]model.Resume, error) {
	return r.list(ctx, `ORDER BY r.created_at DESC, r.id`)
}

// ListSelectedBy returns resumes hrID currently has selected.
func (r *Repository) ListSelectedBy(ctx context.Context, hrID string) ([]model.Resume, error) {
	return r.list(ctx, `WHERE EXISTS (
			SELECT 1 FROM resume_selections s WHERE s.resume_id = r.id AND s.hr_id = $1 AND s.selected
		) ORDER BY r.created_at DESC, r.id`, hrID)
}

func (r *Repository) CountByCollege(ctx context.Context, collegeID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM resumes WHERE college_id = $1`, collegeID)
}

func (r *Repository) CountByUploader(ctx context.Context, kind model.UploaderKind) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM resumes WHERE uploaded_by = $1`, string(kind))
}

func (r *Repository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM resumes`)
}

// UpsertSelection records hrID's decision in one statement. It reports false
// when the resume does not exist.
func (r *Repository) UpsertSelection(ctx context.Context, resumeID, hrID string, selected bool) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO resume_selections (resume_id, hr_id, selected)
		SELECT id, $2, $3 FROM resumes WHERE id = $1
		ON CONFLICT (resume_id, hr_id) DO UPDATE SET selected = EXCLUDED.selected, updated_at = NOW()
	`, resumeID, hrID, selected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AddViewer records viewerID once and marks the resume viewed. It reports
// false when the resume does not exist.
func (r *Repository) AddViewer(ctx context.Context, resumeID, viewerID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		WITH ins AS (
			INSERT INTO resume_views (resume_id, viewer_id)
			SELECT id, $2 FROM resumes WHERE id = $1
			ON CONFLICT (resume_id, viewer_id) DO NOTHING
		)
		UPDATE resumes SET viewed = TRUE, updated_at = NOW() WHERE id = $1
	`, resumeID, viewerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) list(ctx context.Context, tail string, args ...any) ([]model.Resume, error) {
	rows, err := r.db.Query(ctx, `SELECT `+resumeColumns+` FROM resumes r `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []model.Resume{}
	for rows.Next() {
		rec, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func (r *Repository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func scanResume(row pgx.Row) (model.Resume, error) {
	var (
		res        model.Resume
		uploadedBy string
		selections []byte
	)
	if err := row.Scan(&res.ID, &res.FileName, &res.StoredName, &res.FileURL, &uploadedBy, &res.CollegeID, &res.CollegeName,
		&res.Department, &res.State, &res.District, &res.Content, &res.Viewed, &res.UploadedAt, &res.CreatedAt, &res.UpdatedAt,
		&res.ViewedBy, &selections); err != nil {
		return model.Resume{}, err
	}
	res.UploadedBy = model.UploaderKind(uploadedBy)
	if err := json.Unmarshal(selections, &res.SelectedBy); err != nil {
		return model.Resume{}, fmt.Errorf("decode selections: %w", err)
	}
	if res.ViewedBy == nil {
		res.ViewedBy = []string{}
	}
	if res.SelectedBy == nil {
		res.SelectedBy = []model.Selection{}
	}
	return res, nil
}
