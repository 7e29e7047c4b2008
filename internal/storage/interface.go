package storage

import (
	"context"

	"agent-advisor/internal/model"
)

// Storage persists session snapshots. Implementations return
// ErrSessionNotFound for unknown ids.
type Storage interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	UpdateSession(ctx context.Context, session *model.Session) error
	DeleteSession(ctx context.Context, sessionID string) error
	// ListSessions returns session headers, newest update first. Snapshot
	// contents may be left empty.
	ListSessions(ctx context.Context) ([]*model.Session, error)

	Init(ctx context.Context) error
	Close() error
	Backup(ctx context.Context) error
}
