package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/corridor/game/engine"
	"github.com/wricardo/corridor/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = service.ErrSessionExists
	ErrInvalidSessionID     = errors.New("invalid session ID")
	ErrNoFreeSessionID      = errors.New("no free session ID")
)

// generated room codes are 2 random bytes, hex encoded
const (
	roomCodeBytes   = 2
	roomCodeRetries = 32
)

// Manager keeps the live matches of a process, keyed by lowercase room code.
// With a persistence backend it also saves matches and lazily reloads them.
type Manager struct {
	mu          sync.RWMutex
	matches     map[string]*service.Session
	persistence SessionPersistence
}

func NewManager() *Manager {
	return &Manager{matches: make(map[string]*service.Session)}
}

func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	m := NewManager()
	m.persistence = persistence
	return m
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func randomRoomCode() (string, error) {
	b := make([]byte, roomCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// freeRoomCode picks a code no live or persisted match uses. Caller holds mu.
func (m *Manager) freeRoomCode() (string, error) {
	for i := 0; i < roomCodeRetries; i++ {
		code, err := randomRoomCode()
		if err != nil {
			return "", fmt.Errorf("generating room code: %w", err)
		}
		if _, taken := m.matches[code]; taken {
			continue
		}
		if m.persistence != nil && m.persistence.Exists(code) {
			continue
		}
		return code, nil
	}
	return "", ErrNoFreeSessionID
}

// Create starts a match for config. An empty id gets a fresh room code.
// Ids are case-insensitive and may not contain path separators or dots.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	id = normalizeID(id)
	if strings.ContainsAny(id, `/\.`) {
		return nil, ErrInvalidSessionID
	}

	game, err := engine.NewGame(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		if id, err = m.freeRoomCode(); err != nil {
			return nil, err
		}
	} else if _, exists := m.matches[id]; exists {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		Game:           game,
		Config:         game.Config(),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.matches[id] = sess

	log.WithFields(log.Fields{"session": id, "board": sess.Config.BoardSize}).Info("session created")
	return sess, nil
}

// Get returns a live match, reloading it from persistence when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	id = normalizeID(id)

	m.mu.RLock()
	sess, ok := m.matches[id]
	m.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if m.persistence == nil || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another caller may have reloaded it meanwhile
	if sess, ok := m.matches[id]; ok {
		return sess, nil
	}
	m.matches[id] = loaded
	return loaded, nil
}

// List returns the live matches, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	out := make([]*service.Session, 0, len(m.matches))
	for _, sess := range m.matches {
		out = append(out, sess)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Delete drops a match from memory and from persistence
func (m *Manager) Delete(id string) error {
	id = normalizeID(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	_, live := m.matches[id]
	delete(m.matches, id)

	stored := m.persistence != nil && m.persistence.Exists(id)
	if stored {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
	}
	if !live && !stored {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory forgets a live match but leaves its file alone
func (m *Manager) DeleteFromMemory(id string) error {
	id = normalizeID(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.matches[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.matches, id)
	return nil
}

func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.matches[normalizeID(id)]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	return nil
}

// Save writes one live match. Without persistence it is a no-op.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	sess, ok := m.matches[normalizeID(id)]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	return m.persistence.Save(sess)
}

// CleanupExpiredSessions evicts matches idle for longer than maxAge. Their
// files stay, so an evicted match can still be reloaded by id.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, sess := range m.matches {
		if !sess.LastAccessedAt.Before(cutoff) {
			continue
		}
		delete(m.matches, id)
		evicted++
		log.WithFields(log.Fields{
			"session": id,
			"idle":    time.Since(sess.LastAccessedAt).Round(time.Second),
		}).Debug("session expired")
	}
	return evicted
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.matches)
}

// LoadPersistedSessions brings every stored match into memory. Broken files
// are skipped with a warning.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		key := normalizeID(id)
		if _, ok := m.matches[key]; ok {
			continue
		}
		sess, err := m.persistence.Load(id)
		if err != nil {
			log.WithField("session", id).Warnf("failed to load persisted session: %v", err)
			continue
		}
		m.matches[key] = sess
		loaded++
	}

	if loaded > 0 {
		log.Infof("restored %d matches from storage", loaded)
	}
	return nil
}

// SaveAllSessions writes every live match, reporting how many failed
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	failed := 0
	for _, sess := range m.List() {
		if err := m.persistence.Save(sess); err != nil {
			log.WithField("session", sess.ID).Warnf("failed to save session: %v", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}
	return nil
}
