// Package service provides the business logic layer for Corridor matches.
//
// The service package implements:
//   - Multi-session match management with two claimable seats
//   - Command dispatch to the engine, one command at a time
//   - Remote event application for peer-validated play
//   - Paginated move history
//   - Board configuration access
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager handles session storage and persistence.
// ConfigManager manages board configuration loading and validation.
//
// Seats:
//
// Creating a session claims seat 1 and returns its token; JoinSession claims
// seat 2. Commands for a claimed seat must carry its token. An open seat
// accepts any caller, which allows hot-seat play from a single client.
//
// Rejections:
//
// Engine rejections (not your turn, illegal destination, sealed path and so
// on) are returned as a CommandResult with Accepted false and a stable
// Reason code, never as errors. Errors mean the request itself was wrong:
// unknown session, bad token, malformed remote event.
//
// Usage:
//
//	svc := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := svc.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	seat := service.Seat{Player: info.Grant.Player, Token: info.Grant.Token}
//	result, err := svc.Move(ctx, info.ID, service.MoveCommand{Seat: seat, To: engine.Coord{Row: 2, Col: 8}})
package service
