// seed inserts development sample data for local testing.
// Idempotent: skips everything if the admin user (admin@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"promanage/backend/internal/audit"
	auditrepo "promanage/backend/internal/audit/repository"
	"promanage/backend/internal/config"
	"promanage/backend/internal/db"
	identitydomain "promanage/backend/internal/identity/domain"
	identityrepo "promanage/backend/internal/identity/repository"
	"promanage/backend/internal/logging"
	"promanage/backend/internal/platform/rbac"
	projectrepo "promanage/backend/internal/project/repository"
	projectservice "promanage/backend/internal/project/service"
	"promanage/backend/internal/security"
	taskdomain "promanage/backend/internal/task/domain"
	taskrepo "promanage/backend/internal/task/repository"
	taskservice "promanage/backend/internal/task/service"
	workspacerepo "promanage/backend/internal/workspace/repository"
	workspaceservice "promanage/backend/internal/workspace/service"
)

const devPassword = "password123"

var devUsers = []struct {
	name, email string
	role        identitydomain.Role
}{
	{"Admin User", "admin@example.com", identitydomain.RoleAdmin},
	{"Manager User", "manager@example.com", identitydomain.RoleManager},
	{"Member User", "member@example.com", identitydomain.RoleMember},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, "promanage-seed")
	ctx := context.Background()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "db", err)
	}
	defer conn.Close()

	users := identityrepo.NewPostgresRepository(conn)
	existing, err := users.GetByEmail(ctx, devUsers[0].email)
	if err != nil {
		fatal(logger, "seed check", err)
	}
	if existing != nil {
		logger.Info("seed already applied, skipping", "email", devUsers[0].email)
		os.Exit(0)
	}

	passwordHash, err := security.NewHasher(cfg.BcryptCost).Hash([]byte(devPassword))
	if err != nil {
		fatal(logger, "hash password", err)
	}
	now := time.Now().UTC()
	created := make([]*identitydomain.User, 0, len(devUsers))
	for _, du := range devUsers {
		u := &identitydomain.User{
			ID:           uuid.New().String(),
			Name:         du.name,
			Email:        du.email,
			PasswordHash: passwordHash,
			Role:         du.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, u); err != nil {
			fatal(logger, "create user "+du.email, err)
		}
		created = append(created, u)
	}
	admin, member := created[0], created[2]

	ws, err := workspaceservice.NewWorkspaceService(workspacerepo.NewPostgresRepository(conn)).
		Create(ctx, "Acme Workspace", admin.ID)
	if err != nil {
		fatal(logger, "create workspace", err)
	}
	project, err := projectservice.NewProjectService(projectrepo.NewPostgresRepository(conn)).
		Create(ctx, projectservice.CreateInput{Name: "Website Redesign", Description: "Sample project", WorkspaceID: ws.ID})
	if err != nil {
		fatal(logger, "create project", err)
	}

	tasks := taskservice.NewTaskService(taskrepo.NewPostgresRepository(conn),
		audit.NewLogger(auditrepo.NewPostgresRepository(conn), nil))
	due := now.AddDate(0, 0, 7)
	actor := rbac.Principal{ID: admin.ID, Email: admin.Email, Role: admin.Role}
	if _, _, err := tasks.Create(ctx, actor, taskservice.CreateInput{
		Title:      "Draft landing page copy",
		Priority:   taskdomain.PriorityHigh,
		DueDate:    &due,
		ProjectID:  project.ID,
		AssigneeID: &member.ID,
	}); err != nil {
		fatal(logger, "create task", err)
	}

	logger.Info("seed completed", "workspace", ws.ID, "project", project.ID)
	for _, du := range devUsers {
		fmt.Printf("%s login: %s / %s\n", du.role, du.email, devPassword)
	}
}

func fatal(logger *slog.Logger, what string, err error) {
	logger.Error(what+" failed", "error", err)
	os.Exit(1)
}
