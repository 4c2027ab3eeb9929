// Package websocket provides the WebSocket transport for the Rush Hour server.
//
// The package uses a hub-and-spoke model: a central Hub owns every client
// connection and all of its bookkeeping runs on the Run goroutine. Each
// client has a read pump and a write pump.
//
// Session Integration:
//
// Clients pass their session via query parameter (/ws?session=a1b2).
// Broadcasts go only to clients of the same session.
//
// Message Protocol:
//
// Outgoing messages are one JSON document per frame:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}}
//	{"session_id": "a1b2", "event": "win_reveal", "data": {"type": "win_reveal", "label": "9999", ...}}
//
// Engine events (drag_started, vehicle_moved, drag_ended, win_exit,
// win_reveal, level_loaded) are forwarded through PublishEvent, which makes
// the Hub a service.EventPublisher.
//
// Incoming messages are pointer gestures:
//
//	{"type": "drag_start", "vehicle_id": "v1", "pointer": 120}
//	{"type": "drag_move", "pointer": 260, "cell_size": 64}
//	{"type": "drag_end"}
//
// They are passed to the InboundHandler and its result is sent back to the
// sender only, as a "reply" or "error" event.
//
// Broadcasting never blocks the caller. When the queue is full the message
// is dropped and logged, and a client whose send buffer is full is
// disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	svc := service.NewGameService(sessions, levels, service.WithEventPublisher(hub))
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
