package repository

import (
	"context"
	"database/sql"
	"errors"

	"promanage/backend/internal/task/domain"
)

// PostgresRepository stores tasks in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a task repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = `t.id, t.title, COALESCE(t.description, ''), t.status, t.priority, t.due_date, t.project_id, t.assignee_id, t.created_at, t.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

// scanTask reads taskColumns followed by extra destinations.
func scanTask(s scanner, extra ...any) (*domain.Task, error) {
	var (
		t        domain.Task
		status   string
		priority string
		due      sql.NullTime
		assignee sql.NullString
	)
	dest := append([]any{&t.ID, &t.Title, &t.Description, &status, &priority, &due, &t.ProjectID, &assignee, &t.CreatedAt, &t.UpdatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	if assignee.Valid {
		id := assignee.String
		t.AssigneeID = &id
	}
	return &t, nil
}

func (r *PostgresRepository) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID).Scan(&ok)
	return ok, err
}

func (r *PostgresRepository) GetUserRef(ctx context.Context, userID string) (*domain.UserRef, error) {
	var u domain.UserRef
	err := r.db.QueryRowContext(ctx, `SELECT id, name, email FROM users WHERE id = $1`, userID).Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, priority, due_date, project_id, assignee_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.Title, nullString(t.Description), string(t.Status), string(t.Priority),
		t.DueDate, t.ProjectID, t.AssigneeID, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var (
		p                  domain.ProjectRef
		aID, aName, aEmail         sql.NullString
	)
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+`, p.id, p.name, u.id, u.name, u.email
		   FROM tasks t
		   JOIN projects p ON p.id = t.project_id
		   LEFT JOIN users u ON u.id = t.assignee_id
		  WHERE t.id = $1`, id)
	t, err := scanTask(row, &p.ID, &p.Name, &aID, &aName, &aEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.Project = &p
	if aID.Valid {
		t.Assignee = &domain.UserRef{ID: aID.String, Name: aName.String, Email: aEmail.String}
	}
	return t, nil
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+`, u.id, u.name, u.email
		   FROM tasks t LEFT JOIN users u ON u.id = t.assignee_id
		  WHERE t.project_id = $1
		  ORDER BY t.created_at DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*domain.Task{}
	for rows.Next() {
		var aID, aName, aEmail sql.NullString
		t, err := scanTask(rows, &aID, &aName, &aEmail)
		if err != nil {
			return nil, err
		}
		if aID.Valid {
			t.Assignee = &domain.UserRef{ID: aID.String, Name: aName.String, Email: aEmail.String}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+`, p.id, p.name, w.id, w.name
		   FROM tasks t
		   JOIN projects p ON p.id = t.project_id
		   JOIN workspaces w ON w.id = p.workspace_id
		  WHERE t.assignee_id = $1
		  ORDER BY t.priority DESC, t.due_date ASC NULLS LAST`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*domain.Task{}
	for rows.Next() {
		var (
			p  domain.ProjectRef
			ws domain.WorkspaceRef
		)
		t, err := scanTask(rows, &p.ID, &p.Name, &ws.ID, &ws.Name)
		if err != nil {
			return nil, err
		}
		p.Workspace = &ws
		t.Project = &p
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, t *domain.Task) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		    SET title = $2, description = $3, status = $4, priority = $5, due_date = $6, assignee_id = $7, updated_at = $8
		  WHERE id = $1`,
		t.ID, t.Title, nullString(t.Description), string(t.Status), string(t.Priority), t.DueDate, t.AssigneeID, t.UpdatedAt)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
