package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// AttachConnection upgrades r to a WebSocket and runs a minimal NIP-01
// envelope loop: every inbound ["EVENT", {...}] message is checked
// against policy before an ["OK", id, accepted, reason] reply is sent.
// Every other envelope kind (REQ, CLOSE, subscriptions, auth) belongs to
// the underlying relay engine and is not handled here.
func AttachConnection(policy *WritePolicy, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	peer := clientAddr(r)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return nil
		}
		handleEnvelope(conn, policy, peer, raw)
	}
}

func handleEnvelope(conn *websocket.Conn, policy *WritePolicy, peer string, raw []byte) {
	var envelope []json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope) == 0 {
		return
	}
	var label string
	if err := json.Unmarshal(envelope[0], &label); err != nil {
		return
	}
	if label != "EVENT" || len(envelope) < 2 {
		return
	}

	var event Event
	if err := json.Unmarshal(envelope[1], &event); err != nil {
		return
	}
	id := eventID(envelope[1])

	accepted, reason := policy.Admit(event, peer)
	reply, err := json.Marshal([]any{"OK", id, accepted, reason})
	if err != nil {
		slog.Error("relay: marshaling OK envelope", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
		slog.Error("relay: writing OK envelope", "error", err)
	}
}

// eventID best-effort extracts the event's own "id" field for the OK
// envelope, falling back to empty string if the event body doesn't carry
// one in the shape this package inspects.
func eventID(raw json.RawMessage) string {
	var withID struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &withID)
	return withID.ID
}

func clientAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	return r.RemoteAddr
}
