// Package mcp exposes the Rush Hour REST API as Model Context Protocol tools.
//
// Client is a thin proxy: every tool call becomes one or two REST requests
// against a running server, and the JSON response is rendered as text an
// agent can read, including an ASCII board with the exit marked.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board, vehicles and win status
//   - slide: move one vehicle a signed number of cells
//   - load_level, reset_game
//   - move_history: paginated history
//   - hint: next move of a shortest solution
//   - describe_cell: which vehicle occupies a cell and how far it can move
//   - list_levels, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
