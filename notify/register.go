package notify

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"github.com/bitcredit-protocol/bcr-relay/mailer"
	"github.com/bitcredit-protocol/bcr-relay/nostrcrypto"
)

type registerRequest struct {
	Npub            string `json:"npub"`
	SignedChallenge string `json:"signed_challenge"`
	EbillURL        string `json:"ebill_url"`
	Email           string `json:"email"`
}

type registerResponse struct {
	PreferencesToken string `json:"preferences_token"`
}

// Register verifies a signed challenge and, on success, starts the email
// confirmation flow.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	xonly, err := nostrcrypto.DecodeNpub(req.Npub)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid npub")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email")
		return
	}

	ip := clientIP(r)
	if !h.Limiter.Check(ip, &req.Email, nil, &req.Npub) {
		writeError(w, http.StatusTooManyRequests, "Please try again later")
		return
	}

	ctx := r.Context()
	challenge, err := h.Store.GetChallenge(ctx, req.Npub)
	if err != nil {
		logUpstream("register.GetChallenge", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}
	if challenge == nil {
		writeError(w, http.StatusBadRequest, "Challenge not found")
		return
	}
	if time.Since(challenge.CreatedAt) > challengeTTL {
		writeError(w, http.StatusBadRequest, "Challenge expired")
		return
	}

	ok, err := nostrcrypto.VerifyChallenge(challenge.Challenge, req.SignedChallenge, xonly)
	if err != nil || !ok {
		writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	if err := h.Store.DeleteChallenge(ctx, req.Npub); err != nil {
		logUpstream("register.DeleteChallenge", err)
	}

	confirmToken, err := newToken()
	if err != nil {
		logUpstream("register.newToken(confirm)", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}
	preferencesToken, err := newToken()
	if err != nil {
		logUpstream("register.newToken(preferences)", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}

	msg, err := mailer.BuildConfirmationEmail(h.HostURL, h.MailFrom, req.Email, confirmToken)
	if err != nil {
		logUpstream("register.BuildConfirmationEmail", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}
	if err := h.Sender.Send(ctx, msg); err != nil {
		logUpstream("register.Send", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}

	if err := h.Store.UpsertEmailConfirmation(ctx, req.Npub, req.Email, confirmToken); err != nil {
		logUpstream("register.UpsertEmailConfirmation", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}
	if err := h.Store.InsertPreferencesStub(ctx, req.Npub, req.Email, preferencesToken, req.EbillURL, int64(DefaultFlags)); err != nil {
		logUpstream("register.InsertPreferencesStub", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{PreferencesToken: preferencesToken})
}
