package repository

import (
	"context"
	"testing"
	"time"

	"tb-intake/internal/domain/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestWizardSessionRepository_SaveAndFind(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewWizardSessionRepository(client)
	ctx := context.Background()

	answers, _ := entity.AnswerMap{}.SetAnswer(entity.SymptomFatigue, true)
	session := &entity.WizardSession{
		ID:        "s-1",
		PatientID: "p-1",
		Step:      3,
		Answers:   answers,
		Status:    entity.SubmissionIdle,
	}
	require.NoError(t, repo.Save(ctx, session, time.Hour))
	assert.True(t, mr.Exists(RedisSessionKeyPrefix+"s-1"))

	found, err := repo.FindByID(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 3, found.Step)
	assert.Equal(t, answers, found.Answers)

	mr.FastForward(2 * time.Hour)
	expired, err := repo.FindByID(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestWizardSessionRepository_SubmitLock(t *testing.T) {
	_, client := setupTestRedis(t)
	repo := NewWizardSessionRepository(client)
	ctx := context.Background()

	token, ok, err := repo.AcquireSubmitLock(ctx, "s-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = repo.AcquireSubmitLock(ctx, "s-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	held, err := repo.SubmitLockHeld(ctx, "s-1")
	require.NoError(t, err)
	assert.True(t, held)

	require.NoError(t, repo.ReleaseSubmitLock(ctx, "s-1", token))
	held, err = repo.SubmitLockHeld(ctx, "s-1")
	require.NoError(t, err)
	assert.False(t, held)

	_, ok, err = repo.AcquireSubmitLock(ctx, "s-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWizardSessionRepository_ExpiredHolderKeepsLaterLock(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewWizardSessionRepository(client)
	ctx := context.Background()

	stale, ok, err := repo.AcquireSubmitLock(ctx, "s-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	current, ok, err := repo.AcquireSubmitLock(ctx, "s-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.ReleaseSubmitLock(ctx, "s-1", stale))
	value, err := mr.Get(RedisSubmitLockKeyPrefix + "s-1")
	require.NoError(t, err)
	assert.Equal(t, current, value)

	require.NoError(t, repo.ReleaseSubmitLock(ctx, "s-1", current))
	assert.False(t, mr.Exists(RedisSubmitLockKeyPrefix+"s-1"))
}

func TestWizardSessionRepository_Delete(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewWizardSessionRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &entity.WizardSession{ID: "s-2"}, time.Hour))
	_, _, err := repo.AcquireSubmitLock(ctx, "s-2", time.Minute)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "s-2"))
	assert.False(t, mr.Exists(RedisSessionKeyPrefix+"s-2"))
	assert.False(t, mr.Exists(RedisSubmitLockKeyPrefix+"s-2"))
}
