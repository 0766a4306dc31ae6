package repository

import (
	"context"
	"time"

	"tb-intake/internal/domain/entity"
)

type WizardSessionRepository interface {
	Save(ctx context.Context, session *entity.WizardSession, ttl time.Duration) error
	// FindByID returns nil, nil when the session does not exist or expired.
	FindByID(ctx context.Context, id string) (*entity.WizardSession, error)
	Delete(ctx context.Context, id string) error
	// AcquireSubmitLock reports whether the caller now holds the session's submit lock.
	// The returned token must be passed back to ReleaseSubmitLock.
	AcquireSubmitLock(ctx context.Context, id string, ttl time.Duration) (token string, ok bool, err error)
	// ReleaseSubmitLock frees the lock only if it is still held under token.
	ReleaseSubmitLock(ctx context.Context, id, token string) error
	SubmitLockHeld(ctx context.Context, id string) (bool, error)
}
