package notify

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bitcredit-protocol/bcr-relay/mailer"
	"github.com/bitcredit-protocol/bcr-relay/nostrcrypto"
)

// sendIDPrefix is the literal prefix every payload.id must carry.
const sendIDPrefix = "bitcr"

type sendRequest struct {
	Payload   nostrcrypto.NotificationSendPayload `json:"payload"`
	Signature string                              `json:"signature"`
}

// Send handles POST /notifications/v1/send. A receiver with no
// preferences, disabled delivery, or the relevant flag unset is a
// silent accept: the caller cannot distinguish "delivered" from
// "suppressed" from the response alone.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	senderKey, err := nostrcrypto.DecodeNpub(req.Payload.Sender)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sender")
		return
	}
	if _, err := nostrcrypto.DecodeNpub(req.Payload.Receiver); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid receiver")
		return
	}
	if req.Payload.ID == "" || !strings.HasPrefix(req.Payload.ID, sendIDPrefix) {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	ip := clientIP(r)
	if !h.Limiter.Check(ip, nil, &req.Payload.Sender, &req.Payload.Receiver) {
		writeError(w, http.StatusTooManyRequests, "Please try again later")
		return
	}

	ok, err := nostrcrypto.VerifyPayload(req.Payload, req.Signature, senderKey)
	if err != nil || !ok {
		writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	ctx := r.Context()
	prefs, err := h.Store.GetPreferences(ctx, req.Payload.Receiver)
	if err != nil {
		logUpstream("send.GetPreferences", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}
	if prefs == nil || !prefs.Enabled {
		writeJSON(w, http.StatusOK, errorResp{Msg: "OK"})
		return
	}
	flag, known := FlagForKind(req.Payload.Kind)
	if !known || !PreferencesFlags(prefs.Flags).Has(flag) {
		writeJSON(w, http.StatusOK, errorResp{Msg: "OK"})
		return
	}

	msg, err := mailer.BuildNotificationEmail(h.HostURL, prefs.EbillURL, h.MailFrom, prefs.Email, flag.Title(), req.Payload.ID, prefs.Token)
	if err != nil {
		logUpstream("send.BuildNotificationEmail", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}
	if err := h.Sender.Send(ctx, msg); err != nil {
		logUpstream("send.Send", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}

	writeJSON(w, http.StatusOK, errorResp{Msg: "OK"})
}
