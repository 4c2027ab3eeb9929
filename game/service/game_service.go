package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	LoadLevel(ctx context.Context, sessionID, levelID string) (*engine.GameState, error)
	StartDrag(ctx context.Context, sessionID, vehicleID string, pointer float64) (*DragResult, error)
	DragMove(ctx context.Context, sessionID string, pointer, cellSize float64) (*DragResult, error)
	EndDrag(ctx context.Context, sessionID string) (*DragResult, error)
	Slide(ctx context.Context, sessionID, vehicleID string, cells int) (*SlideResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	Hint(ctx context.Context, sessionID string) (*HintResult, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	GetLevel(ctx context.Context, levelID string) (*engine.LevelConfig, error)
	SaveLevel(ctx context.Context, levelID string, level *engine.LevelConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, levelID string, level *engine.LevelConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, levelID string, level *engine.LevelConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// LevelManager handles level loading
type LevelManager interface {
	LoadLevel(name string) (*engine.LevelConfig, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() *engine.LevelConfig
	SaveLevel(name string, level *engine.LevelConfig) error
}

// EventPublisher receives engine events tagged with their session.
// PublishEvent is called with the service lock held and must not call
// back into the service.
type EventPublisher interface {
	PublishEvent(sessionID string, ev engine.Event)
}

// Session represents an active game session
type Session struct {
	ID             string
	LevelID        string
	Engine         *engine.GameEngine
	Level          *engine.LevelConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	attached  bool
	collected *[]engine.Event
}
