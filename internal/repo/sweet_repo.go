package repo

import (
	"context"
	"fmt"
	"strings"

	dom "Sweetshop/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sweetColumns = "id, name, category, price, quantity, created_at, updated_at"

type SweetRepo interface {
	Create(ctx context.Context, s dom.Sweet) (dom.Sweet, error)
	GetByID(ctx context.Context, id int64) (dom.Sweet, error)
	List(ctx context.Context, skip, limit int) ([]dom.Sweet, error)
	Search(ctx context.Context, f dom.SweetFilter) ([]dom.Sweet, error)
	Update(ctx context.Context, id int64, patch dom.SweetPatch) (dom.Sweet, error)
	Delete(ctx context.Context, id int64) error
	Purchase(ctx context.Context, id int64, qty int64) (dom.Sweet, error)
	Restock(ctx context.Context, id int64, qty int64) (dom.Sweet, error)
}

type PGSweetRepo struct {
	db *pgxpool.Pool
}

func NewPGSweetRepo(db *pgxpool.Pool) *PGSweetRepo {
	return &PGSweetRepo{db: db}
}

func (r *PGSweetRepo) Create(ctx context.Context, s dom.Sweet) (dom.Sweet, error) {
	query := `
		INSERT INTO sweets (name, category, price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + sweetColumns
	var out dom.Sweet
	err := r.db.QueryRow(ctx, query, s.Name, s.Category, s.Price, s.Quantity).Scan(
		&out.ID, &out.Name, &out.Category, &out.Price, &out.Quantity,
		&out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGSweetRepo) GetByID(ctx context.Context, id int64) (dom.Sweet, error) {
	query := `SELECT ` + sweetColumns + ` FROM sweets WHERE id = $1`
	var s dom.Sweet
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *PGSweetRepo) List(ctx context.Context, skip, limit int) ([]dom.Sweet, error) {
	query := `SELECT ` + sweetColumns + ` FROM sweets ORDER BY id OFFSET $1 LIMIT $2`
	rows, err := r.db.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSweets(rows)
}

// Search combines the provided filters with AND; name and category match as
// case-insensitive substrings (ILIKE).
func (r *PGSweetRepo) Search(ctx context.Context, f dom.SweetFilter) ([]dom.Sweet, error) {
	var conds []string
	var args []any
	if f.Name != "" {
		args = append(args, "%"+f.Name+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, "%"+f.Category+"%")
		conds = append(conds, fmt.Sprintf("category ILIKE $%d", len(args)))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		conds = append(conds, fmt.Sprintf("price >= $%d", len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}

	query := `SELECT ` + sweetColumns + ` FROM sweets`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSweets(rows)
}

// Update applies only the non-nil patch fields in a single statement.
func (r *PGSweetRepo) Update(ctx context.Context, id int64, patch dom.SweetPatch) (dom.Sweet, error) {
	query := `
		UPDATE sweets SET
			name = COALESCE($2, name),
			category = COALESCE($3, category),
			price = COALESCE($4, price),
			quantity = COALESCE($5, quantity),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sweetColumns
	var s dom.Sweet
	err := r.db.QueryRow(ctx, query, id, patch.Name, patch.Category, patch.Price, patch.Quantity).Scan(
		&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *PGSweetRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sweets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Purchase decrements quantity by qty inside one transaction. The row is
// locked for the read-check-write so concurrent purchases cannot drive the
// quantity negative.
func (r *PGSweetRepo) Purchase(ctx context.Context, id int64, qty int64) (dom.Sweet, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dom.Sweet{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var have int64
	if err := tx.QueryRow(ctx, `SELECT quantity FROM sweets WHERE id = $1 FOR UPDATE`, id).Scan(&have); err != nil {
		return dom.Sweet{}, err
	}
	if have < qty {
		return dom.Sweet{}, &dom.InsufficientStockError{Available: have}
	}

	query := `
		UPDATE sweets SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sweetColumns
	var s dom.Sweet
	if err := tx.QueryRow(ctx, query, id, qty).Scan(
		&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return dom.Sweet{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return dom.Sweet{}, fmt.Errorf("commit: %w", err)
	}
	return s, nil
}

// Restock increments quantity by qty. A single UPDATE is already atomic.
func (r *PGSweetRepo) Restock(ctx context.Context, id int64, qty int64) (dom.Sweet, error) {
	query := `
		UPDATE sweets SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sweetColumns
	var s dom.Sweet
	err := r.db.QueryRow(ctx, query, id, qty).Scan(
		&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func collectSweets(rows pgx.Rows) ([]dom.Sweet, error) {
	var list []dom.Sweet
	for rows.Next() {
		var s dom.Sweet
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
