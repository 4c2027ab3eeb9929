// Package api provides the HTTP REST API for the Rush Hour server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"level_id": "level2"}, optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board, win phase and history
//   - POST /api/sessions/{id}/level - Load another level ({"level_id": "level3"})
//   - POST /api/sessions/{id}/drag/start - {"vehicle_id": "v1", "pointer": 120}
//   - POST /api/sessions/{id}/drag/move - {"pointer": 260, "cell_size": 64}
//   - POST /api/sessions/{id}/drag/end
//   - POST /api/sessions/{id}/slide - Whole move in cells ({"vehicle_id": "red", "cells": 4})
//   - POST /api/sessions/{id}/reset - Restore the level's starting layout
//   - GET /api/sessions/{id}/history - Move history (?page=1&limit=20&order=desc)
//   - GET /api/sessions/{id}/hint - Next move of a shortest solution
//
// Levels:
//   - GET /api/levels - List level files with solvability
//   - GET /api/levels/{name} - Raw level definition
//   - POST /api/levels - Validate and save a level
//
// Other:
//   - GET /ws?session={id} - WebSocket stream of state updates and engine events
//   - GET /health
//
// Every state-changing request also broadcasts the new state to the
// session's WebSocket clients.
//
// Errors are returned as JSON with a status derived from the error kind:
// 404 for unknown sessions, levels and vehicles, 409 for operations that
// conflict with the game (already won, no drag in progress), 400 for
// invalid levels and pointer input.
//
//	{"error": "session not found: session not found"}
package api
