// Package session provides session management for the Rush Hour server.
//
// Each session owns its own engine.GameEngine and remembers which level it
// is playing. Sessions are identified by 4-character hex IDs, looked up
// case-insensitively, and kept in memory only; they disappear on restart
// or once CleanupExpiredSessions finds them idle for too long.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", "level1", level)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get("AB12") // same as "ab12"
//
// The manager is safe for concurrent use. It does not serialize access to
// a session's engine; the service layer does that.
package session
