package notify

import (
	"encoding/json"
	"net/http"

	"github.com/bitcredit-protocol/bcr-relay/nostrcrypto"
)

type startRequest struct {
	Npub string `json:"npub"`
}

type startResponse struct {
	Challenge  string `json:"challenge"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// Start issues a fresh sign-in challenge for a npub, rate-limited on
// (ip, receiver=npub).
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid npub")
		return
	}

	if _, err := nostrcrypto.DecodeNpub(req.Npub); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid npub")
		return
	}

	ip := clientIP(r)
	if !h.Limiter.Check(ip, nil, nil, &req.Npub) {
		writeError(w, http.StatusTooManyRequests, "Please try again later")
		return
	}

	challenge, err := newChallenge()
	if err != nil {
		logUpstream("start.newChallenge", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}

	if err := h.Store.InsertChallenge(r.Context(), req.Npub, challenge); err != nil {
		// Persist failure is logged but not surfaced, matching the
		// "best-effort" posture of challenge issuance.
		logUpstream("start.InsertChallenge", err)
	}

	writeJSON(w, http.StatusOK, startResponse{Challenge: challenge, TTLSeconds: int(challengeTTL.Seconds())})
}
