// Package session stores Corridor matches.
//
// Manager keeps live sessions in memory behind a read-write lock and, when
// given a SessionPersistence, writes them through to storage. IDs are short
// random hex strings and are matched case-insensitively.
//
// FilePersistence writes one JSON file per session. The file records the
// board configuration, seat tokens and the accepted event history; loading a
// session replays that history through a fresh engine, so a restored match
// is exactly as legal as the one that was saved.
//
// Usage:
//
//	fp, err := session.NewFilePersistence("./sessions", configMgr)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(fp)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Warn(err)
//	}
//
//	sess, err := manager.Create("", config)
package session
