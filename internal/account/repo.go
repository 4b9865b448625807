package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resumehub/internal/model"
	"resumehub/internal/store"
)

const accountColumns = `id, name, role, email, password_hash, phone, college, company, address, state, district, created_at, updated_at`

// Repository persists accounts in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a repo.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account. A taken email yields store.ErrDuplicate.
func (r *Repository) Create(ctx context.Context, a *model.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (id, name, role, email, password_hash, phone, college, company, address, state, district, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, a.ID, a.Name, string(a.Role), a.Email, a.PasswordHash, a.Phone, a.College, a.Company, a.Address, a.State, a.District, a.CreatedAt, a.UpdatedAt)
	if store.IsUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

// GetByID returns nil when no account has id.
func (r *Repository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanOptional(row)
}

// GetByEmail returns nil when no account has email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanOptional(row)
}

// Update applies the non-nil fields of u and returns the fresh row, or nil if
// id is unknown.
func (r *Repository) Update(ctx context.Context, id string, u model.AccountUpdate) (*model.Account, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("name", u.Name)
	add("email", u.Email)
	add("phone", u.Phone)
	add("college", u.College)
	add("company", u.Company)
	add("address", u.Address)
	add("state", u.State)
	add("district", u.District)
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := `UPDATE accounts SET ` + strings.Join(sets, ", ") + `, updated_at = NOW() WHERE id = $` +
		fmt.Sprint(len(args)) + ` RETURNING ` + accountColumns

	acc, err := scanOptional(r.db.QueryRow(ctx, query, args...))
	if store.IsUniqueViolation(err) {
		return nil, store.ErrDuplicate
	}
	return acc, err
}

// UpdatePassword stores a new hash. It reports whether the account exists.
func (r *Repository) UpdatePassword(ctx context.Context, id, hash string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListByRole returns all accounts of a role ordered by name.
func (r *Repository) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE role = $1 ORDER BY name, id`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// CountByRole counts accounts of a role.
func (r *Repository) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE role = $1`, string(role)).Scan(&n)
	return n, err
}

func scanOptional(row pgx.Row) (*model.Account, error) {
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func scanAccount(row pgx.Row) (model.Account, error) {
	var a model.Account
	var role string
	if err := row.Scan(&a.ID, &a.Name, &role, &a.Email, &a.PasswordHash, &a.Phone, &a.College, &a.Company,
		&a.Address, &a.State, &a.District, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return model.Account{}, err
	}
	a.Role = model.Role(role)
	return a, nil
}
