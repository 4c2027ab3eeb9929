// Package engine provides the core game logic for the Rush Hour sliding-block
// puzzle.
//
// The engine package implements the game mechanics including:
//   - The board model and occupied-cell queries
//   - Pointer-driven, collision-respecting vehicle drags
//   - The exit channel reserved for the player vehicle
//   - The two-phase win sequence and its cancellable timer
//   - Level loading, validation and a breadth-first solver
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState holds everything owned by one loaded
// level and is replaced wholesale on the next load. LevelConfig is a level
// as read from JSON.
//
// Usage:
//
//	level, err := engine.LoadLevelFile("levels/level1.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(level)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Drag the red car three cells to the right with 80px cells
//	gameEngine.BeginDrag("red", 100)
//	gameEngine.DragTo(340, 80)
//	won := gameEngine.EndDrag()
//
// Game Rules:
//
// The board is a 6x6 grid. Vehicles are 2 or 3 cells long and only slide
// along their own axis; they never pass through each other. The level is won
// when the red car is released on the exit cell just past column 5 on row 2.
//
// Concurrency:
//
// GameEngine is not safe for concurrent use. The win reveal runs from a
// Scheduler callback; pass a TimerScheduler with a Locker to serialize it
// with the rest of the caller's engine calls.
package engine
