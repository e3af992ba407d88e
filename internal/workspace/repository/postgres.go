package repository

import (
	"context"
	"database/sql"
	"errors"

	"promanage/backend/internal/workspace/domain"
)

// PostgresRepository stores workspaces in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a workspace repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts w. ID and timestamps must be set.
func (r *PostgresRepository) Create(ctx context.Context, w *domain.Workspace) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, owner_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		w.ID, w.Name, w.OwnerID, w.CreatedAt, w.UpdatedAt)
	return err
}

// GetByID returns the workspace for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	var w domain.Workspace
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, created_at, updated_at FROM workspaces WHERE id = $1`, id).
		Scan(&w.ID, &w.Name, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetForOwner loads the workspace, its owner and its projects.
func (r *PostgresRepository) GetForOwner(ctx context.Context, id, ownerID string) (*domain.Workspace, error) {
	var (
		w     domain.Workspace
		owner domain.OwnerRef
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT w.id, w.name, w.owner_id, w.created_at, w.updated_at, u.id, u.name, u.email
		   FROM workspaces w JOIN users u ON u.id = w.owner_id
		  WHERE w.id = $1 AND w.owner_id = $2`, id, ownerID).
		Scan(&w.ID, &w.Name, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt, &owner.ID, &owner.Name, &owner.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	w.Owner = &owner

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), status, created_at
		   FROM projects WHERE workspace_id = $1 ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	w.Projects = []domain.ProjectRef{}
	for rows.Next() {
		var p domain.ProjectRef
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		w.Projects = append(w.Projects, p)
	}
	return &w, rows.Err()
}

// ListByOwner returns the owner's workspaces with project counts.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Workspace, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT w.id, w.name, w.owner_id, w.created_at, w.updated_at, COUNT(p.id)
		   FROM workspaces w LEFT JOIN projects p ON p.workspace_id = w.id
		  WHERE w.owner_id = $1
		  GROUP BY w.id
		  ORDER BY w.created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*domain.Workspace{}
	for rows.Next() {
		var (
			w     domain.Workspace
			count int
		)
		if err := rows.Scan(&w.ID, &w.Name, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt, &count); err != nil {
			return nil, err
		}
		w.ProjectCount = &count
		out = append(out, &w)
	}
	return out, rows.Err()
}

// UpdateName renames the workspace and returns the updated row, or nil if it is gone.
func (r *PostgresRepository) UpdateName(ctx context.Context, id, name string) (*domain.Workspace, error) {
	var w domain.Workspace
	err := r.db.QueryRowContext(ctx,
		`UPDATE workspaces SET name = $2, updated_at = now() WHERE id = $1
		 RETURNING id, name, owner_id, created_at, updated_at`, id, name).
		Scan(&w.ID, &w.Name, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Delete removes the workspace.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	return err
}
