// Package websocket carries Corridor match traffic to browsers and peers.
//
// A central Hub groups connections by match ID. Its Run loop owns
// registration and fan-out; each connection has a read pump and a write
// pump goroutine.
//
// Outgoing messages are JSON objects with a "type" field:
//   - state_update: the full game state
//   - event: a command the server accepted, with the state it produced
//   - opponent_moved: an event relayed from another connection in the match
//   - error: a frame from this connection could not be handled
//
// Clients may send {"action":"relay","event":{...}}. The hub checks that
// the event is well formed and forwards it to the other connections of the
// same match. It never validates the event against the game: peers that
// relay are expected to run their own engine and apply it there.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), engine.Player1)
//	})
package websocket
