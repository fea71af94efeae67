// Package remote runs a component app on the server and mirrors its tree
// onto a websocket client.
//
// A Recorder sits between the patcher and an in-memory dom.Document. It
// forwards every node operation and records it as a protocol.Op, so each
// scheduler flush becomes one mutation frame. A Session owns the loop the
// app runs on, sends those frames, and dispatches the client's events to
// the listeners the patcher registered.
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		conn, err := upgrader.Upgrade(w, r, nil)
//		if err != nil {
//			return
//		}
//		remote.NewSession(conn, app).Run(r.Context())
//	})
package remote
