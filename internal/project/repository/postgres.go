package repository

import (
	"context"
	"database/sql"
	"errors"

	"promanage/backend/internal/db"
	"promanage/backend/internal/project/domain"
)

// PostgresRepository stores projects in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a project repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// WorkspaceExists reports whether the workspace row exists.
func (r *PostgresRepository) WorkspaceExists(ctx context.Context, workspaceID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM workspaces WHERE id = $1)`, workspaceID).Scan(&ok)
	return ok, err
}

// Create inserts p.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, status, workspace_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, nullString(p.Description), string(p.Status), p.WorkspaceID, p.CreatedAt, p.UpdatedAt)
	return err
}

// GetByID loads the project, its workspace and its tasks newest first.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var (
		p      domain.Project
		status string
		ws     domain.WorkspaceRef
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.name, COALESCE(p.description, ''), p.status, p.workspace_id, p.created_at, p.updated_at, w.id, w.name
		   FROM projects p JOIN workspaces w ON w.id = p.workspace_id
		  WHERE p.id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &status, &p.WorkspaceID, &p.CreatedAt, &p.UpdatedAt, &ws.ID, &ws.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	p.Workspace = &ws

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, status, priority, due_date, assignee_id, created_at
		   FROM tasks WHERE project_id = $1 ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	p.Tasks = []domain.TaskRef{}
	for rows.Next() {
		var (
			t        domain.TaskRef
			due      sql.NullTime
			assignee sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.Priority, &due, &assignee, &t.CreatedAt); err != nil {
			return nil, err
		}
		if due.Valid {
			t.DueDate = &due.Time
		}
		if assignee.Valid {
			t.AssigneeID = &assignee.String
		}
		p.Tasks = append(p.Tasks, t)
	}
	return &p, rows.Err()
}

// ListByWorkspace returns the workspace's projects with task counts.
func (r *PostgresRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.name, COALESCE(p.description, ''), p.status, p.workspace_id, p.created_at, p.updated_at, COUNT(t.id)
		   FROM projects p LEFT JOIN tasks t ON t.project_id = p.id
		  WHERE p.workspace_id = $1
		  GROUP BY p.id
		  ORDER BY p.created_at DESC`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*domain.Project{}
	for rows.Next() {
		var (
			p      domain.Project
			status string
			count  int
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &status, &p.WorkspaceID, &p.CreatedAt, &p.UpdatedAt, &count); err != nil {
			return nil, err
		}
		p.Status = domain.Status(status)
		p.TaskCount = &count
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Update writes the mutable columns of p.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Project) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = $2, description = $3, status = $4, updated_at = $5 WHERE id = $1`,
		p.ID, p.Name, nullString(p.Description), string(p.Status), p.UpdatedAt)
	return err
}

// DeleteWithTasks deletes tasks first, then the project.
func (r *PostgresRepository) DeleteWithTasks(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
		return err
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
