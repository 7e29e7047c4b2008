package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"agent-advisor/internal/chat"
	"agent-advisor/internal/config"
	"agent-advisor/internal/form"
	"agent-advisor/internal/metrics"
	"agent-advisor/internal/model"
	"agent-advisor/internal/storage"
	"agent-advisor/pkg/logger"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTitlePrefix = "Neue Beratung"
	titleLimit         = 30
)

// Orchestrator is the backend call sequence shared by chat and form.
type Orchestrator = chat.Orchestrator

// session is the live half of a stored session: its two controllers. mu
// serializes persistence so the newest snapshot is written last. Once deleted
// is set the session is never written again.
type session struct {
	mu        sync.Mutex
	deleted   bool
	id        string
	title     string
	createdAt time.Time
	updatedAt time.Time
	chat      *chat.Controller
	form      *form.Controller
}

// AdvisorService owns every session. Live controllers are cached in memory
// and written to storage after each action; a cache miss restores them from
// the last snapshot.
type AdvisorService struct {
	storage storage.Storage
	flow    Orchestrator
	metrics *metrics.Recorder
	config  config.SessionConfig

	live   *cache.Cache
	loadMu sync.Mutex

	backupInterval time.Duration
	stop           chan struct{}
	wg             sync.WaitGroup
	closeOnce      sync.Once
}

func NewAdvisorService(store storage.Storage, flow Orchestrator, rec *metrics.Recorder, sessCfg config.SessionConfig, backupInterval time.Duration) *AdvisorService {
	ttl := sessCfg.TTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	s := &AdvisorService{
		storage:        store,
		flow:           flow,
		metrics:        rec,
		config:         sessCfg,
		live:           cache.New(ttl, sessCfg.CleanupInterval),
		backupInterval: backupInterval,
		stop:           make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupOldSessions()
	if backupInterval > 0 {
		s.wg.Add(1)
		go s.backupLoop()
	}
	return s
}

// OpenStorage builds and initializes the configured store. Like the session
// store it replaces, a store that fails to initialize falls back to memory.
func OpenStorage(ctx context.Context, cfg *config.Config) storage.Storage {
	var store storage.Storage

	switch cfg.Storage.Type {
	case "disk":
		store = storage.NewDiskStorage(cfg.Storage.DataDir, cfg.Storage.CacheSize)
	case "redis":
		r := cfg.Storage.Redis
		opts, err := storage.RedisOptions(r.URL, r.Addr, r.Password, r.DB)
		if err != nil {
			logger.Errorf("Invalid redis configuration: %v", err)
			store = storage.NewMemoryStorage()
			break
		}
		store = storage.NewRedisStorage(redis.NewClient(opts), cfg.Session.TTL)
	default:
		store = storage.NewMemoryStorage()
	}

	if err := store.Init(ctx); err != nil {
		logger.Errorf("Failed to initialize %s storage, using memory: %v", cfg.Storage.Type, err)
		_ = store.Close()
		store = storage.NewMemoryStorage()
		_ = store.Init(ctx)
	}
	return store
}

func (s *AdvisorService) newSession(id, title string, now time.Time) *session {
	return &session{
		id:        id,
		title:     title,
		createdAt: now,
		updatedAt: now,
		chat:      chat.NewController(s.flow, s.metrics),
		form:      form.NewController(s.flow, s.metrics),
	}
}

func (s *AdvisorService) CreateSession(ctx context.Context, title string) (model.SessionResponse, error) {
	now := time.Now()
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitlePrefix + " " + now.Format("2006-01-02 15:04")
	}

	sess := s.newSession(uuid.New().String(), title, now)
	sess.chat.Start()

	if err := s.storage.CreateSession(ctx, sess.record(now)); err != nil {
		return model.SessionResponse{}, fmt.Errorf("failed to create session: %w", err)
	}
	s.live.Set(sess.id, sess, cache.DefaultExpiration)

	logger.Session(sess.id).Info("session created")
	return sess.response(), nil
}

// lookup returns the live session, restoring it from storage if needed.
func (s *AdvisorService) lookup(ctx context.Context, sessionID string) (*session, error) {
	if v, ok := s.live.Get(sessionID); ok {
		sess := v.(*session)
		s.live.Set(sessionID, sess, cache.DefaultExpiration)
		return sess, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if v, ok := s.live.Get(sessionID); ok {
		return v.(*session), nil
	}

	rec, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess := s.newSession(rec.ID, rec.Title, rec.CreatedAt)
	sess.updatedAt = rec.UpdatedAt
	if err := sess.chat.Restore(rec.Chat); err != nil {
		return nil, fmt.Errorf("%w: session %s: %v", storage.ErrInvalidData, sessionID, err)
	}
	if err := sess.form.Restore(rec.Form); err != nil {
		return nil, fmt.Errorf("%w: session %s: %v", storage.ErrInvalidData, sessionID, err)
	}
	sess.chat.Start()

	s.live.Set(sessionID, sess, cache.DefaultExpiration)
	logger.Session(sessionID).Debug("session restored from storage")
	return sess, nil
}

func (sess *session) record(now time.Time) *model.Session {
	return &model.Session{
		ID:        sess.id,
		Title:     sess.title,
		Chat:      sess.chat.Snapshot(),
		Form:      sess.form.Snapshot(),
		CreatedAt: sess.createdAt,
		UpdatedAt: now,
	}
}

func (sess *session) response() model.SessionResponse {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return model.SessionResponse{
		SessionID:    sess.id,
		Title:        sess.title,
		ChatState:    string(sess.chat.State().Name()),
		FormPhase:    string(sess.form.Phase()),
		MessageCount: len(sess.chat.Messages()),
		CreatedAt:    sess.createdAt,
		UpdatedAt:    sess.updatedAt,
	}
}

// persist writes the session's current snapshot. Failures are logged; the
// live controllers stay authoritative until the next successful write.
func (s *AdvisorService) persist(ctx context.Context, sess *session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.deleted {
		logger.Session(sess.id).Debug("session deleted, dropping late write")
		return
	}

	now := time.Now()
	sess.updatedAt = now
	rec := sess.record(now)
	ctx = context.WithoutCancel(ctx)

	err := s.storage.UpdateSession(ctx, rec)
	if errors.Is(err, storage.ErrSessionNotFound) {
		err = s.storage.CreateSession(ctx, rec)
	}
	if err != nil {
		logger.Session(sess.id).WithError(err).Error("failed to persist session")
	}
}

func (s *AdvisorService) GetSession(ctx context.Context, sessionID string) (model.SessionResponse, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return model.SessionResponse{}, err
	}
	return sess.response(), nil
}

// ListSessions returns every stored session, newest first. Live sessions
// report their current state.
func (s *AdvisorService) ListSessions(ctx context.Context) ([]model.SessionResponse, error) {
	records, err := s.storage.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	out := make([]model.SessionResponse, 0, len(records))
	for _, rec := range records {
		if v, ok := s.live.Get(rec.ID); ok {
			out = append(out, v.(*session).response())
			continue
		}
		out = append(out, model.SessionResponse{
			SessionID:    rec.ID,
			Title:        rec.Title,
			ChatState:    rec.Chat.State,
			FormPhase:    rec.Form.Phase,
			MessageCount: len(rec.Chat.Messages),
			CreatedAt:    rec.CreatedAt,
			UpdatedAt:    rec.UpdatedAt,
		})
	}
	return out, nil
}

func (s *AdvisorService) UpdateSessionTitle(ctx context.Context, sessionID, title string) (model.SessionResponse, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.SessionResponse{}, fmt.Errorf("%w: empty title", model.ErrInvalidValue)
	}

	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return model.SessionResponse{}, err
	}

	sess.mu.Lock()
	sess.title = title
	sess.mu.Unlock()

	s.persist(ctx, sess)
	return sess.response(), nil
}

// forget marks a live session deleted so calls still in flight cannot
// write it back, and drops it from the registry.
func (s *AdvisorService) forget(sessionID string) {
	if v, ok := s.live.Get(sessionID); ok {
		sess := v.(*session)
		sess.mu.Lock()
		sess.deleted = true
		sess.mu.Unlock()
	}
	s.live.Delete(sessionID)
}

func (s *AdvisorService) DeleteSession(ctx context.Context, sessionID string) error {
	s.forget(sessionID)
	if err := s.storage.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	logger.Session(sessionID).Info("session deleted")
	return nil
}

func (s *AdvisorService) cleanupOldSessions() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.cleanup(context.Background(), time.Now())
		}
	}
}

// cleanup deletes sessions that were not updated within the TTL.
func (s *AdvisorService) cleanup(ctx context.Context, now time.Time) int {
	if s.config.TTL <= 0 {
		return 0
	}

	sessions, err := s.storage.ListSessions(ctx)
	if err != nil {
		logger.Errorf("Failed to list sessions for cleanup: %v", err)
		return 0
	}

	removed := 0
	cutoff := now.Add(-s.config.TTL)
	for _, rec := range sessions {
		if !rec.UpdatedAt.Before(cutoff) {
			continue
		}
		s.forget(rec.ID)
		if err := s.storage.DeleteSession(ctx, rec.ID); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
			logger.Errorf("Failed to delete expired session %s: %v", rec.ID, err)
			continue
		}
		removed++
		logger.Infof("Cleaned up expired session: %s", rec.ID)
	}
	return removed
}

func (s *AdvisorService) backupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.backupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.storage.Backup(context.Background()); err != nil {
				logger.Errorf("Session backup failed: %v", err)
			}
		}
	}
}

// Close stops the background loops, writes a final backup and closes the
// store.
func (s *AdvisorService) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()

		if s.backupInterval > 0 {
			if berr := s.storage.Backup(context.Background()); berr != nil {
				logger.Errorf("Final session backup failed: %v", berr)
			}
		}
		err = s.storage.Close()
	})
	return err
}
