package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"agent-advisor/internal/model"
	"agent-advisor/pkg/logger"
)

// DiskStorage keeps one JSON file per session under <dataDir>/sessions and a
// sessions.json index used for listing. Recently used sessions are cached.
type DiskStorage struct {
	dataDir   string
	mu        sync.RWMutex
	cache     map[string]*model.Session
	cacheSize int
	index     map[string]*SessionIndex
}

type SessionIndex struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ChatState string    `json:"chat_state"`
	FormPhase string    `json:"form_phase"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewDiskStorage(dataDir string, cacheSize int) *DiskStorage {
	return &DiskStorage{
		dataDir:   dataDir,
		cache:     make(map[string]*model.Session),
		cacheSize: cacheSize,
		index:     make(map[string]*SessionIndex),
	}
}

func (d *DiskStorage) Init(ctx context.Context) error {
	if err := d.createDirectories(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	if err := d.loadIndex(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	logger.Infof("Disk storage initialized at %s (%d sessions)", d.dataDir, len(d.index))
	return nil
}

func (d *DiskStorage) createDirectories() error {
	dirs := []string{
		d.dataDir,
		filepath.Join(d.dataDir, "sessions"),
		filepath.Join(d.dataDir, "backup"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

func (d *DiskStorage) indexPath() string {
	return filepath.Join(d.dataDir, "sessions.json")
}

func (d *DiskStorage) sessionPath(sessionID string) string {
	return filepath.Join(d.dataDir, "sessions", sessionID+".json")
}

// validID rejects ids that would escape the sessions directory.
func validID(sessionID string) bool {
	return sessionID != "" &&
		!strings.ContainsAny(sessionID, `/\`) &&
		!strings.Contains(sessionID, "..")
}

func (d *DiskStorage) loadIndex() error {
	data, err := os.ReadFile(d.indexPath())
	if os.IsNotExist(err) {
		return writeJSON(d.indexPath(), []*SessionIndex{})
	}
	if err != nil {
		return err
	}

	var indexes []*SessionIndex
	if err := json.Unmarshal(data, &indexes); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, idx := range indexes {
		if _, err := os.Stat(d.sessionPath(idx.ID)); err != nil {
			logger.Warnf("Session %s is indexed but has no file, dropping it", idx.ID)
			continue
		}
		d.index[idx.ID] = idx
	}
	return nil
}

func (d *DiskStorage) loadSessionFromFile(sessionID string) (*model.Session, error) {
	data, err := os.ReadFile(d.sessionPath(sessionID))
	if err != nil {
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return &session, nil
}

// writeJSON writes v to path through a temp file and rename, so readers
// never see a partial file.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}

// saveSessionIndex writes the index file. Caller holds d.mu.
func (d *DiskStorage) saveSessionIndex() error {
	indexes := make([]*SessionIndex, 0, len(d.index))
	for _, idx := range d.index {
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool {
		return indexes[i].UpdatedAt.After(indexes[j].UpdatedAt)
	})
	return writeJSON(d.indexPath(), indexes)
}

func indexOf(session *model.Session) *SessionIndex {
	return &SessionIndex{
		ID:        session.ID,
		Title:     session.Title,
		ChatState: session.Chat.State,
		FormPhase: session.Form.Phase,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

// store writes the session file and index entry. Caller holds d.mu.
func (d *DiskStorage) store(session *model.Session) error {
	if err := writeJSON(d.sessionPath(session.ID), session); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	d.index[session.ID] = indexOf(session)
	if err := d.saveSessionIndex(); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	stored := *session
	d.cache[session.ID] = &stored
	d.evictCache()
	return nil
}

func (d *DiskStorage) CreateSession(ctx context.Context, session *model.Session) error {
	if !validID(session.ID) {
		return fmt.Errorf("%w: session id %q", ErrInvalidData, session.ID)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store(session)
}

func (d *DiskStorage) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if !validID(sessionID) {
		return nil, ErrSessionNotFound
	}

	d.mu.RLock()
	if session, exists := d.cache[sessionID]; exists {
		out := *session
		d.mu.RUnlock()
		return &out, nil
	}
	d.mu.RUnlock()

	session, err := d.loadSessionFromFile(sessionID)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	d.mu.Lock()
	cached := *session
	d.cache[sessionID] = &cached
	d.evictCache()
	d.mu.Unlock()

	return session, nil
}

func (d *DiskStorage) UpdateSession(ctx context.Context, session *model.Session) error {
	if !validID(session.ID) {
		return ErrSessionNotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.index[session.ID]; !exists {
		return ErrSessionNotFound
	}
	return d.store(session)
}

func (d *DiskStorage) DeleteSession(ctx context.Context, sessionID string) error {
	if !validID(sessionID) {
		return ErrSessionNotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	sessionPath := d.sessionPath(sessionID)
	if _, err := os.Stat(sessionPath); os.IsNotExist(err) {
		return ErrSessionNotFound
	}

	if err := os.Remove(sessionPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	delete(d.cache, sessionID)
	delete(d.index, sessionID)
	if err := d.saveSessionIndex(); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}
	return nil
}

func (d *DiskStorage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sessions := make([]*model.Session, 0, len(d.index))
	for _, idx := range d.index {
		sessions = append(sessions, &model.Session{
			ID:        idx.ID,
			Title:     idx.Title,
			Chat:      model.ChatSnapshot{State: idx.ChatState},
			Form:      model.FormSnapshot{Phase: idx.FormPhase},
			CreatedAt: idx.CreatedAt,
			UpdatedAt: idx.UpdatedAt,
		})
	}

	sortNewestFirst(sessions)
	return sessions, nil
}

// evictCache drops the least recently updated sessions beyond cacheSize.
// Caller holds d.mu.
func (d *DiskStorage) evictCache() {
	if len(d.cache) <= d.cacheSize {
		return
	}

	type cacheEntry struct {
		id        string
		updatedAt time.Time
	}

	entries := make([]cacheEntry, 0, len(d.cache))
	for id, session := range d.cache {
		entries = append(entries, cacheEntry{id: id, updatedAt: session.UpdatedAt})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].updatedAt.Before(entries[j].updatedAt)
	})

	toEvict := len(d.cache) - d.cacheSize
	for i := 0; i < toEvict; i++ {
		delete(d.cache, entries[i].id)
	}
}

func (d *DiskStorage) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache = make(map[string]*model.Session)
	return nil
}

// Backup copies the session files and index into a timestamped directory
// under <dataDir>/backup.
func (d *DiskStorage) Backup(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	backupDir := filepath.Join(d.dataDir, "backup", fmt.Sprintf("backup_%d", time.Now().UnixNano()))
	dstDir := filepath.Join(backupDir, "sessions")
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	if err := copyDir(ctx, filepath.Join(d.dataDir, "sessions"), dstDir); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}
	if err := copyFile(d.indexPath(), filepath.Join(backupDir, "sessions.json")); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	logger.Infof("Backup completed: %s", backupDir)
	return nil
}

func copyDir(ctx context.Context, src, dst string) error {
	files, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		if err := copyFile(filepath.Join(src, file.Name()), filepath.Join(dst, file.Name())); err != nil {
			return err
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
