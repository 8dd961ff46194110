package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const packageColumns = `id, name, description, price_minor, duration_days, kind, session_count, active, created_at`

func (r *repository) Create(ctx context.Context, p *Package) (*Package, error) {
	query := `
		INSERT INTO membership_packages (name, description, price_minor, duration_days, kind, session_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + packageColumns

	var created Package
	err := r.db.GetContext(ctx, &created, query,
		p.Name, p.Description, p.PriceMinor, p.DurationDays, p.Kind, p.SessionCount)
	if err != nil {
		return nil, fmt.Errorf("insert package: %w", err)
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Package, error) {
	query := `SELECT ` + packageColumns + ` FROM membership_packages WHERE id = $1`

	var p Package
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get package %d: %w", id, err)
	}

	return &p, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Package, error) {
	query := `SELECT ` + packageColumns + ` FROM membership_packages WHERE active = TRUE ORDER BY price_minor ASC, id ASC`

	packages := []Package{}
	if err := r.db.SelectContext(ctx, &packages, query); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	return packages, nil
}

func (r *repository) Deactivate(ctx context.Context, id int) error {
	query := `UPDATE membership_packages SET active = FALSE WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate package %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrPackageNotFound
	}

	return nil
}
