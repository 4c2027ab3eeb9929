package main

import (
	"fmt"
	"image/color"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/rushhour/desktop/remote"
	"github.com/wricardo/mcp-training/rushhour/desktop/view"
	"github.com/wricardo/mcp-training/rushhour/game/engine"
	protocol "github.com/wricardo/mcp-training/rushhour/transport/websocket"
)

const (
	screenWidth  = 600
	screenHeight = 720
	defaultURL   = "http://localhost:8080"
	pollInterval = 500 * time.Millisecond
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

var (
	backgroundColor = color.RGBA{20, 20, 30, 255}
	boardColor      = color.RGBA{60, 60, 70, 255}
	gridColor       = color.RGBA{45, 45, 55, 255}
	exitColor       = color.RGBA{0, 200, 0, 255}
	playerColor     = color.RGBA{220, 40, 40, 255}
	draggingColor   = color.RGBA{255, 220, 80, 255}
)

// Vehicle colors, picked by id so they stay stable across updates
var vehicleColors = []color.RGBA{
	{100, 100, 255, 255}, // Blue
	{100, 255, 100, 255}, // Green
	{255, 255, 100, 255}, // Yellow
	{255, 100, 255, 255}, // Magenta
	{100, 255, 255, 255}, // Cyan
	{255, 165, 0, 255},   // Orange
	{128, 0, 128, 255},   // Purple
	{255, 192, 203, 255}, // Pink
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	sessions  []remote.SessionItem
	levels    []remote.LevelItem
	cursorPos int
	levelIdx  int // -1 means server default
	errorMsg  string
}

// Game represents the desktop game client
type Game struct {
	api     *remote.Client
	layout  view.Layout
	screen  ScreenType
	welcome *WelcomeScreen

	mu         sync.RWMutex
	sessionID  string
	conn       *remote.Conn
	state      *engine.GameState
	lastUpdate time.Time
	status     string
	reveal     view.Reveal

	drag *view.Drag
}

// NewGame creates a client; with a session id it goes straight to the board
func NewGame(api *remote.Client, sessionID string) *Game {
	g := &Game{
		api:     api,
		layout:  view.DefaultLayout(),
		screen:  ScreenWelcome,
		welcome: &WelcomeScreen{levelIdx: -1},
	}

	if sessionID != "" {
		g.join(sessionID)
	} else {
		g.loadWelcomeData()
	}
	return g
}

// loadWelcomeData fetches available sessions and levels from server
func (g *Game) loadWelcomeData() {
	ws := g.welcome
	ws.errorMsg = ""

	sessions, err := g.api.ListSessions()
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		return
	}
	ws.sessions = sessions

	levels, err := g.api.ListLevels()
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading levels: %v", err)
		return
	}
	ws.levels = levels
	if ws.levelIdx >= len(levels) {
		ws.levelIdx = -1
	}
}

// join switches the board to a session and opens its WebSocket
func (g *Game) join(sessionID string) {
	g.leave()

	g.mu.Lock()
	g.sessionID = sessionID
	g.state = nil
	g.status = ""
	g.reveal.Clear()
	g.mu.Unlock()

	conn, err := g.api.Dial(sessionID)
	if err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Warn("WebSocket unavailable, falling back to polling")
	} else {
		g.mu.Lock()
		g.conn = conn
		g.mu.Unlock()
		go g.listen(conn)
	}

	g.fetchGameState()
	g.screen = ScreenGame
}

func (g *Game) leave() {
	g.mu.Lock()
	conn := g.conn
	g.conn = nil
	g.drag = nil
	g.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// listen applies WebSocket frames until the connection drops
func (g *Game) listen(conn *remote.Conn) {
	err := conn.Listen(g.apply)

	g.mu.Lock()
	if g.conn == conn {
		g.conn = nil
		logrus.WithError(err).WithField("session_id", conn.SessionID()).Warn("WebSocket closed")
	}
	g.mu.Unlock()
}

// apply merges one server update into the local view
func (g *Game) apply(u remote.Update) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if u.State != nil {
		g.setState(u.State)
	}
	if u.Error != "" {
		g.status = u.Error
	}
	if u.Engine == nil {
		return
	}

	switch u.Engine.Type {
	case engine.EventWinExit:
		g.reveal.Exit(float32(g.layout.CellSize * 2))
	case engine.EventWinReveal:
		g.reveal.Show(u.Engine.Label)
	case engine.EventLevelLoaded:
		g.reveal.Clear()
	}
}

// setState must be called with mu held
func (g *Game) setState(state *engine.GameState) {
	if g.state != nil && state.Generation != g.state.Generation {
		g.reveal.Clear()
	}
	g.state = state
	g.lastUpdate = time.Now()

	// joined after the win: skip straight to the end of the sequence
	if state.WinPhase == engine.WinWon && !g.reveal.Shown() {
		g.reveal.Exit(float32(g.layout.CellSize * 2))
		g.reveal.Show("")
	}
}

// fetchGameState gets the current game state from the server
func (g *Game) fetchGameState() {
	g.mu.RLock()
	sessionID := g.sessionID
	g.mu.RUnlock()
	if sessionID == "" {
		return
	}

	state, err := g.api.State(sessionID)
	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.status = err.Error()
		g.lastUpdate = time.Now()
		return
	}
	g.setState(state)
}

// Update updates game logic
func (g *Game) Update() error {
	switch g.screen {
	case ScreenWelcome:
		g.updateWelcomeScreen()
	case ScreenGame:
		g.updateGameScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (g *Game) updateWelcomeScreen() {
	ws := g.welcome

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && ws.cursorPos < len(ws.sessions)-1 {
		ws.cursorPos++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && ws.cursorPos > 0 {
		ws.cursorPos--
	}

	// Cycle through levels with Tab, ending on the server default
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(ws.levels) > 0 {
		ws.levelIdx++
		if ws.levelIdx >= len(ws.levels) {
			ws.levelIdx = -1
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		levelID := ""
		if ws.levelIdx >= 0 {
			levelID = ws.levels[ws.levelIdx].LevelID
		}
		sessionID, err := g.api.CreateSession(levelID)
		if err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
			return
		}
		logrus.WithFields(logrus.Fields{"session_id": sessionID, "level": levelID}).Info("Created new session")
		g.join(sessionID)
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		if ws.cursorPos < len(ws.sessions) {
			g.join(ws.sessions[ws.cursorPos].ID)
		} else {
			ws.errorMsg = "No session selected. Press N to create one."
		}
	}
}

// updateGameScreen handles board input and animation
func (g *Game) updateGameScreen() {
	g.mu.Lock()
	g.reveal.Update(1 / float32(ebiten.TPS()))
	conn := g.conn
	state := g.state
	stale := time.Since(g.lastUpdate) > pollInterval
	g.mu.Unlock()

	if conn == nil && (state == nil || stale) {
		g.fetchGameState()
	}

	if state != nil && conn != nil {
		g.updateDrag(conn, state)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.resetGame()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		g.nextLevel()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.leave()
		g.screen = ScreenWelcome
		g.loadWelcomeData()
	}
}

func (g *Game) updateDrag(conn *remote.Conn, state *engine.GameState) {
	if g.drag == nil {
		if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) || state.Won {
			return
		}
		drag, msg, ok := view.BeginDrag(&MouseSource{}, g.layout, state.Vehicles)
		if !ok {
			return
		}
		g.drag = drag
		g.send(conn, msg)
		return
	}

	if msg, ok := g.drag.Update(); ok {
		g.send(conn, msg)
	}
	if g.drag.IsReleased() {
		g.drag = nil
	}
}

func (g *Game) send(conn *remote.Conn, msg protocol.ClientMessage) {
	if err := conn.Send(msg); err != nil {
		g.mu.Lock()
		g.status = err.Error()
		g.mu.Unlock()
	}
}

func (g *Game) resetGame() {
	g.mu.RLock()
	sessionID := g.sessionID
	g.mu.RUnlock()

	state, err := g.api.Reset(sessionID)
	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.status = err.Error()
		return
	}
	g.reveal.Clear()
	g.setState(state)
}

// nextLevel loads the level after the current one in the server's list
func (g *Game) nextLevel() {
	levels, err := g.api.ListLevels()
	if err != nil || len(levels) == 0 {
		return
	}

	g.mu.RLock()
	sessionID := g.sessionID
	current := ""
	if g.state != nil {
		current = g.state.LevelName
	}
	g.mu.RUnlock()

	next := levels[0].LevelID
	for i, level := range levels {
		if level.Name == current && i+1 < len(levels) {
			next = levels[i+1].LevelID
		}
	}

	state, err := g.api.LoadLevel(sessionID, next)
	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.status = err.Error()
		return
	}
	g.setState(state)
}

// Draw renders the game
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	switch g.screen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

// drawWelcomeScreen renders the session selection screen
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcome

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== RUSH HOUR - SESSION SELECT ===", 160, y)
	y += 30

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Recent Sessions:", 20, y)
	y += 20
	if len(ws.sessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	}
	for i, session := range ws.sessions {
		cursor := "  "
		if i == ws.cursorPos {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s | %s", cursor, session.ID, session.LevelID)
		if session.GameState != nil {
			line += fmt.Sprintf(" | Moves:%d", session.GameState.TotalMoves)
			if session.GameState.Won {
				line += " SOLVED"
			}
		}
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}

	y += 20
	level := "server default"
	if ws.levelIdx >= 0 {
		l := ws.levels[ws.levelIdx]
		level = fmt.Sprintf("%s (%s, %d moves)", l.LevelID, l.Name, l.MinMoves)
	}
	ebitenutil.DebugPrintAt(screen, "New session level: "+level, 20, y)
	y += 30

	for _, line := range []string{
		"CONTROLS:",
		"  UP/DOWN  - Choose session",
		"  ENTER    - Join session",
		"  TAB      - Cycle level for new session",
		"  N        - Create new session",
		"  F5       - Refresh",
	} {
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}
}

// drawGameScreen renders the board, vehicles and win overlay
func (g *Game) drawGameScreen(screen *ebiten.Image) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.state == nil {
		ebitenutil.DebugPrint(screen, "Loading...")
		return
	}
	state := g.state

	connStatus := "POLL"
	if g.conn != nil {
		connStatus = "WS"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Session %s [%s]  Level: %s  Moves: %d",
		g.sessionID, connStatus, state.LevelName, state.TotalMoves), 20, 20)
	if state.Message != "" {
		ebitenutil.DebugPrintAt(screen, state.Message, 20, 40)
	}
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, "! "+g.status, 20, 60)
	}

	board := g.layout.Board()
	fillRect(screen, board, boardColor)
	for y := 0; y < engine.BoardHeight; y++ {
		for x := 0; x < engine.BoardWidth; x++ {
			cell := g.layout.Cell(x, y)
			strokeRect(screen, cell, gridColor)
		}
	}
	fillRect(screen, g.layout.Exit(), exitColor)

	vehicles := append([]*engine.Vehicle(nil), state.Vehicles...)
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	for i, v := range vehicles {
		clr := vehicleColors[i%len(vehicleColors)]
		offset := 0.0
		if v.Player {
			clr = playerColor
			offset = float64(g.reveal.Offset)
		}
		if v.ID == state.Dragging {
			clr = draggingColor
		}

		r := g.layout.Vehicle(v, offset)
		if r.X >= screenWidth {
			continue
		}
		fillRect(screen, r, clr)
		ebitenutil.DebugPrintAt(screen, v.ID, int(r.X)+6, int(r.Y)+6)
	}

	if g.reveal.Shown() {
		g.drawReveal(screen, board)
	}

	ebitenutil.DebugPrintAt(screen, "Drag: Move vehicle | R: Reset | L: Next level | ESC: Menu", 20, screenHeight-20)
}

func (g *Game) drawReveal(screen *ebiten.Image, board view.Rect) {
	alpha := uint8(g.reveal.Alpha * 200)
	banner := view.Rect{X: board.X, Y: board.Y + board.H/2 - 40, W: board.W, H: 80}
	fillRect(screen, banner, color.RGBA{0, 0, 0, alpha})

	if g.reveal.Alpha < 0.5 {
		return
	}
	text := "SOLVED!"
	if g.reveal.Label != "" {
		text = "SOLVED!  " + g.reveal.Label
	}
	ebitenutil.DebugPrintAt(screen, text, int(banner.X+banner.W/2)-len(text)*3, int(banner.Y+banner.H/2)-8)
}

func fillRect(screen *ebiten.Image, r view.Rect, clr color.Color) {
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), clr, false)
}

func strokeRect(screen *ebiten.Image, r view.Rect, clr color.Color) {
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 1, clr, false)
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// MouseSource is a view.PointerSource implementation of mouse.
type MouseSource struct{}

func (m *MouseSource) Position() (int, int) {
	return ebiten.CursorPosition()
}

func (m *MouseSource) IsJustReleased() bool {
	return inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
}

func main() {
	baseURL := os.Getenv("RUSHHOUR_API_URL")
	if baseURL == "" {
		baseURL = defaultURL
	}

	// Optional session id to join directly
	sessionID := ""
	if len(os.Args) > 1 {
		sessionID = os.Args[1]
	}

	game := NewGame(remote.NewClient(baseURL), sessionID)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Rush Hour - Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		logrus.Fatal(err)
	}
}
