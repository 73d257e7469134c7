package postgres

import (
	repo "github.com/afisha-board/backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Users     repo.Users
	Events    repo.Events
	AuditLogs repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:     &usersRepo{pool},
		Events:    &eventsRepo{pool},
		AuditLogs: &auditLogsRepo{pool},
	}
}
