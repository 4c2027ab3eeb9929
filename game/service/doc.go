// Package service provides the business logic layer for the Rush Hour server.
//
// GameService sits between the transports (REST, WebSocket, MCP) and the
// engine. It owns session isolation, level loading and the serialization of
// every engine call: a single mutex guards all sessions, and the delayed
// win reveal of each engine is scheduled through engine.TimerScheduler with
// that same mutex as its Locker, so the timer callback never races a drag.
//
// Usage:
//
//	sessions := session.NewManager()
//	levels, _ := config.NewManager("levels")
//	svc := service.NewGameService(sessions, levels,
//		service.WithEventPublisher(hub))
//
//	info, err := svc.CreateSession(ctx, "level1")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// pointer drag, in pixels
//	svc.StartDrag(ctx, info.ID, "v1", 120)
//	svc.DragMove(ctx, info.ID, 260, 64)
//	svc.EndDrag(ctx, info.ID)
//
//	// or a whole move, in cells
//	svc.Slide(ctx, info.ID, "red", 4)
//
// Engine events are forwarded to the EventPublisher tagged with the session
// id, and the events produced by a call are also returned in its result.
package service
