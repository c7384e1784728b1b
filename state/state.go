package state

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"libercare/config"
	"libercare/types"
)

// Manager holds the latest article snapshot per language and the refresh
// run state, with thread-safe access
type Manager struct {
	mu sync.RWMutex

	// Current run
	currentState types.RunState
	runID        string
	startedAt    time.Time
	lastErr      error

	// Data
	snapshots map[types.Language]types.Snapshot

	// Logs (ring buffer)
	logs    []types.LogEntry
	maxLogs int

	now func() time.Time
}

// NewManager creates a new state manager
func NewManager() *Manager {
	return &Manager{
		currentState: types.RunStateIdle,
		snapshots:    make(map[types.Language]types.Snapshot),
		logs:         make([]types.LogEntry, 0),
		maxLogs:      config.MaxStatusLogs,
		now:          time.Now,
	}
}

// SetClock replaces the time source, for tests
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// AddLog adds a log entry (thread-safe)
func (m *Manager) AddLog(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLog(fmt.Sprintf(format, args...))
}

// appendLog must be called with the lock held
func (m *Manager) appendLog(message string) {
	m.logs = append(m.logs, types.LogEntry{Timestamp: m.now(), Message: message})
	if len(m.logs) > m.maxLogs {
		m.logs = m.logs[len(m.logs)-m.maxLogs:]
	}
}

// Begin moves to the refreshing state and returns a new run id.
// It returns false when a run is already in progress.
func (m *Manager) Begin() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentState == types.RunStateRefreshing {
		return m.runID, false
	}
	m.currentState = types.RunStateRefreshing
	m.runID = uuid.New().String()
	m.startedAt = m.now()
	m.lastErr = nil
	m.appendLog(fmt.Sprintf("Refresh %s started", m.runID))
	return m.runID, true
}

// Complete ends the current run successfully
func (m *Manager) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentState = types.RunStateComplete
	m.appendLog(fmt.Sprintf("Refresh %s complete", m.runID))
}

// SetError ends the current run with an error
func (m *Manager) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentState = types.RunStateError
	m.lastErr = err
	m.appendLog(fmt.Sprintf("Error: %v", err))
}

// GetState gets the current state (thread-safe)
func (m *Manager) GetState() types.RunState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState
}

// Running reports whether a refresh is in progress
func (m *Manager) Running() bool {
	return m.GetState() == types.RunStateRefreshing
}

// StoreSnapshot records the articles fetched for a language
func (m *Manager) StoreSnapshot(lang types.Language, articles []types.Article) types.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]types.Article, len(articles))
	copy(copied, articles)
	snap := types.Snapshot{
		Language:     lang,
		FetchedAt:    m.now(),
		ArticleCount: len(copied),
		Articles:     copied,
	}
	m.snapshots[lang] = snap
	return snap
}

// PutSnapshot stores a snapshot as is, keeping its fetch time
func (m *Manager) PutSnapshot(snap types.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap.Articles = append([]types.Article(nil), snap.Articles...)
	snap.ArticleCount = len(snap.Articles)
	m.snapshots[snap.Language] = snap
}

// Snapshot returns the stored snapshot of a language, if any
func (m *Manager) Snapshot(lang types.Language) (types.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[lang]
	if !ok {
		return types.Snapshot{}, false
	}
	snap.Articles = append([]types.Article(nil), snap.Articles...)
	return snap, true
}

// Fresh returns the snapshot of a language when it is younger than window
func (m *Manager) Fresh(lang types.Language, window time.Duration) (types.Snapshot, bool) {
	snap, ok := m.Snapshot(lang)
	if !ok {
		return types.Snapshot{}, false
	}
	m.mu.RLock()
	now := m.now()
	m.mu.RUnlock()
	if now.Sub(snap.FetchedAt) >= window {
		return types.Snapshot{}, false
	}
	return snap, true
}

// GetStatus returns a snapshot of the current state (thread-safe)
func (m *Manager) GetStatus() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resp := types.StatusResponse{
		State:     m.currentState,
		RunID:     m.runID,
		Logs:      append([]types.LogEntry{}, m.logs...), // Copy slice
		Snapshots: make([]types.LanguageStatus, 0, len(m.snapshots)),
	}
	if !m.startedAt.IsZero() {
		started := m.startedAt
		resp.StartedAt = &started
	}
	if m.lastErr != nil {
		resp.Error = m.lastErr.Error()
	}
	for lang, snap := range m.snapshots {
		resp.Snapshots = append(resp.Snapshots, types.LanguageStatus{
			Language:     lang,
			FetchedAt:    snap.FetchedAt,
			ArticleCount: snap.ArticleCount,
		})
	}
	sort.Slice(resp.Snapshots, func(i, j int) bool {
		return resp.Snapshots[i].Language < resp.Snapshots[j].Language
	})
	return resp
}
