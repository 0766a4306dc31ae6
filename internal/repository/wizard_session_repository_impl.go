package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tb-intake/internal/domain/entity"
	domainRepo "tb-intake/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefixes for wizard sessions
	RedisSessionKeyPrefix    = "wizard:session:"
	RedisSubmitLockKeyPrefix = "wizard:submit:"
)

// releaseSubmitLockScript deletes the lock only while it still carries the caller's token,
// so a holder whose TTL ran out cannot free a later holder's lock.
//
// KEYS[1] = wizard:submit:{id}
// ARGV[1] = token
var releaseSubmitLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

type wizardSessionRepository struct {
	redisClient *redis.Client
}

func NewWizardSessionRepository(redisClient *redis.Client) domainRepo.WizardSessionRepository {
	return &wizardSessionRepository{redisClient: redisClient}
}

func (r *wizardSessionRepository) Save(ctx context.Context, session *entity.WizardSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode wizard session %s: %w", session.ID, err)
	}
	return r.redisClient.Set(ctx, RedisSessionKeyPrefix+session.ID, data, ttl).Err()
}

func (r *wizardSessionRepository) FindByID(ctx context.Context, id string) (*entity.WizardSession, error) {
	data, err := r.redisClient.Get(ctx, RedisSessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var session entity.WizardSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode wizard session %s: %w", id, err)
	}
	return &session, nil
}

func (r *wizardSessionRepository) Delete(ctx context.Context, id string) error {
	return r.redisClient.Del(ctx, RedisSessionKeyPrefix+id, RedisSubmitLockKeyPrefix+id).Err()
}

func (r *wizardSessionRepository) AcquireSubmitLock(ctx context.Context, id string, ttl time.Duration) (string, bool, error) {
	token := uuid.New().String()
	ok, err := r.redisClient.SetNX(ctx, RedisSubmitLockKeyPrefix+id, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire submit lock %s: %w", id, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *wizardSessionRepository) ReleaseSubmitLock(ctx context.Context, id, token string) error {
	if err := releaseSubmitLockScript.Run(ctx, r.redisClient, []string{RedisSubmitLockKeyPrefix + id}, token).Err(); err != nil {
		return fmt.Errorf("release submit lock %s: %w", id, err)
	}
	return nil
}

func (r *wizardSessionRepository) SubmitLockHeld(ctx context.Context, id string) (bool, error) {
	n, err := r.redisClient.Exists(ctx, RedisSubmitLockKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("check submit lock %s: %w", id, err)
	}
	return n > 0, nil
}
