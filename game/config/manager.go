package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
	"github.com/wricardo/mcp-training/rushhour/game/service"
)

// DefaultLevelID is preferred as the default level when present
const DefaultLevelID = "level1"

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level")
)

// Manager handles level file loading and caching
type Manager struct {
	levelDir     string
	defaultID    string // chosen with SetDefault, survives RefreshCache
	defaultLevel *engine.LevelConfig
	levels       map[string]*engine.LevelConfig
	mu           sync.RWMutex
}

// NewManager creates a new level manager
func NewManager(levelDir string) (*Manager, error) {
	if _, err := os.Stat(levelDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("level directory does not exist: %s", levelDir)
	}

	m := &Manager{
		levelDir: levelDir,
		levels:   make(map[string]*engine.LevelConfig),
	}

	m.defaultLevel = m.resolveDefault()
	return m, nil
}

// LoadLevel loads a level by id (file name with or without .json)
func (m *Manager) LoadLevel(name string) (*engine.LevelConfig, error) {
	id := levelID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, ErrLevelNotFound
	}

	m.mu.RLock()
	if level, exists := m.levels[id]; exists {
		m.mu.RUnlock()
		return level, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if level, exists := m.levels[id]; exists {
		return level, nil
	}

	data, err := os.ReadFile(filepath.Join(m.levelDir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLevelNotFound
		}
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	level, err := engine.ParseLevel(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	if level.Name == "" {
		level.Name = id
	}

	m.levels[id] = level
	return level, nil
}

// ListLevels returns information about every valid level file, sorted by id
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var levels []*service.LevelInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := levelID(entry.Name())
		level, err := m.LoadLevel(id)
		if err != nil {
			logrus.WithError(err).WithField("file", entry.Name()).Warn("skipping invalid level file")
			continue
		}

		info := &service.LevelInfo{
			Filename:     entry.Name(),
			LevelID:      id,
			Name:         level.Name,
			Description:  level.Description,
			VehicleCount: len(level.Vehicles),
		}
		if n, err := engine.MinMoves(&engine.Board{Vehicles: engine.BuildVehicles(level)}); err == nil {
			info.Solvable = true
			info.MinMoves = n
		}
		levels = append(levels, info)
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].LevelID < levels[j].LevelID })
	return levels, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.LevelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default level by id
func (m *Manager) SetDefault(name string) error {
	level, err := m.LoadLevel(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = levelID(name)
	m.defaultLevel = level
	return nil
}

// RefreshCache drops every cached level and resolves the default again,
// picking up files edited on disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.levels = make(map[string]*engine.LevelConfig)
	m.mu.Unlock()

	def := m.resolveDefault()

	m.mu.Lock()
	m.defaultLevel = def
	m.mu.Unlock()
}

// SaveLevel validates a level and writes it to disk
func (m *Manager) SaveLevel(name string, level *engine.LevelConfig) error {
	id := levelID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: bad level id %q", ErrInvalidLevel, name)
	}
	if err := engine.ValidateLevelConfig(level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	data, err := json.MarshalIndent(level, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.levelDir, id+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.levels[id] = level
	m.mu.Unlock()

	return nil
}

// Count returns the number of cached levels
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.levels)
}

// resolveDefault picks the level chosen with SetDefault, else level1, else
// the first valid level, else the built-in level. Must be called without
// holding mu.
func (m *Manager) resolveDefault() *engine.LevelConfig {
	m.mu.RLock()
	chosen := m.defaultID
	m.mu.RUnlock()
	if chosen != "" {
		if level, err := m.LoadLevel(chosen); err == nil {
			return level
		}
		logrus.WithField("level", chosen).Warn("default level unavailable, falling back")
	}

	if level, err := m.LoadLevel(DefaultLevelID); err == nil {
		return level
	}

	levels, err := m.ListLevels()
	if err != nil || len(levels) == 0 {
		return engine.DefaultLevel()
	}

	level, err := m.LoadLevel(levels[0].LevelID)
	if err != nil {
		return engine.DefaultLevel()
	}
	return level
}

func levelID(name string) string {
	return strings.TrimSuffix(name, ".json")
}
