package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"agent-advisor/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(id string, updated time.Time) *model.Session {
	return &model.Session{
		ID:    id,
		Title: "Session " + id,
		Chat: model.ChatSnapshot{
			State:    "priorities",
			Messages: []model.ChatMessage{model.NewAssistantMessage("Hallo", nil)},
			Requirements: model.Requirements{
				AgentType:  model.AgentChatbot,
				Priorities: model.NewPrioritySet(model.PriorityRAG),
			},
		},
		Form:      model.FormSnapshot{Phase: "form", Selected: -1},
		CreatedAt: updated.Add(-time.Minute),
		UpdatedAt: updated,
	}
}

func setupRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store := NewRedisStorage(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func stores(t *testing.T) map[string]Storage {
	redisStore, _ := setupRedis(t)
	return map[string]Storage{
		"memory": NewMemoryStorage(),
		"disk":   NewDiskStorage(t.TempDir(), 2),
		"redis":  redisStore,
	}
}

func TestStorageContract(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Init(ctx))

			_, err := store.GetSession(ctx, "missing")
			assert.ErrorIs(t, err, ErrSessionNotFound)
			assert.ErrorIs(t, store.UpdateSession(ctx, newSession("missing", now)), ErrSessionNotFound)
			assert.ErrorIs(t, store.DeleteSession(ctx, "missing"), ErrSessionNotFound)

			require.NoError(t, store.CreateSession(ctx, newSession("a", now.Add(-2*time.Hour))))
			require.NoError(t, store.CreateSession(ctx, newSession("b", now.Add(-time.Hour))))
			require.NoError(t, store.CreateSession(ctx, newSession("c", now)))

			got, err := store.GetSession(ctx, "b")
			require.NoError(t, err)
			assert.Equal(t, "Session b", got.Title)
			assert.Equal(t, model.AgentChatbot, got.Chat.Requirements.AgentType)
			assert.True(t, got.Chat.Requirements.Priorities.Has(model.PriorityRAG))
			require.Len(t, got.Chat.Messages, 1)
			assert.Equal(t, "Hallo", got.Chat.Messages[0].Content)

			updated := newSession("a", now.Add(time.Hour))
			updated.Chat.State = "confirm"
			require.NoError(t, store.UpdateSession(ctx, updated))

			list, err := store.ListSessions(ctx)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, []string{"a", "c", "b"}, []string{list[0].ID, list[1].ID, list[2].ID})
			assert.Equal(t, "confirm", list[0].Chat.State)

			require.NoError(t, store.DeleteSession(ctx, "c"))
			_, err = store.GetSession(ctx, "c")
			assert.ErrorIs(t, err, ErrSessionNotFound)

			require.NoError(t, store.Backup(ctx))
			require.NoError(t, store.Close())
		})
	}
}

func TestMemoryStorageReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	require.NoError(t, store.CreateSession(ctx, newSession("a", time.Now())))

	got, err := store.GetSession(ctx, "a")
	require.NoError(t, err)
	got.Title = "changed"

	again, err := store.GetSession(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Session a", again.Title)
}

func TestDiskStorageSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := NewDiskStorage(dir, 10)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.CreateSession(ctx, newSession("a", time.Now())))
	require.NoError(t, first.Close())

	second := NewDiskStorage(dir, 10)
	require.NoError(t, second.Init(ctx))

	list, err := second.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "priorities", list[0].Chat.State)

	got, err := second.GetSession(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Session a", got.Title)
}

func TestDiskStorageRejectsPathIDs(t *testing.T) {
	ctx := context.Background()
	store := NewDiskStorage(t.TempDir(), 10)
	require.NoError(t, store.Init(ctx))

	assert.ErrorIs(t, store.CreateSession(ctx, newSession("../escape", time.Now())), ErrInvalidData)
	_, err := store.GetSession(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDiskStorageBackupCopiesFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewDiskStorage(dir, 10)
	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.CreateSession(ctx, newSession("a", time.Now())))

	require.NoError(t, store.Backup(ctx))

	backups, err := os.ReadDir(filepath.Join(dir, "backup"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	_, err = os.Stat(filepath.Join(dir, "backup", backups[0].Name(), "sessions", "a.json"))
	assert.NoError(t, err)
}

func TestRedisStorageTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedis(t)
	require.NoError(t, store.CreateSession(ctx, newSession("a", time.Now())))

	assert.True(t, mr.Exists(redisKeyPrefix+"a"))
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+"a"))

	mr.FastForward(30 * time.Minute)
	require.NoError(t, store.UpdateSession(ctx, newSession("a", time.Now())))
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+"a"))

	mr.FastForward(2 * time.Hour)
	_, err := store.GetSession(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStorageInitFailsWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	store := NewRedisStorage(client, time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	assert.ErrorIs(t, store.Init(context.Background()), ErrStorageInit)
}

func TestRedisOptions(t *testing.T) {
	opt, err := RedisOptions("redis://:secret@cache:6380/2", "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)

	opt, err = RedisOptions("", "localhost:6379", "", 1)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opt.Addr)
	assert.Equal(t, 1, opt.DB)

	_, err = RedisOptions("http://nope", "", "", 0)
	assert.Error(t, err)
}
