package notify

import (
	"encoding/base64"
	"html/template"
	"net/http"
	"time"
)

var confirmResultTemplate = template.Must(template.New("confirm-result").Parse(`
<!doctype html>
<html><head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="font-family: Geist, system-ui, sans-serif; text-align:center; padding:60px;">
  <h1>{{.Title}}</h1>
  <p>{{.Message}}</p>
</body></html>
`))

type confirmResultContext struct {
	Title   string
	Message string
}

func renderConfirmResult(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = confirmResultTemplate.Execute(w, confirmResultContext{Title: title, Message: message})
}

// ConfirmEmail handles GET /notifications/confirm_email?token=...,
// marking the referenced npub's preferences confirmed and enabled.
func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if _, err := base64.RawURLEncoding.DecodeString(token); err != nil || token == "" {
		renderConfirmResult(w, http.StatusBadRequest, "Invalid link", "This confirmation link is malformed.")
		return
	}

	ctx := r.Context()
	confirmation, err := h.Store.GetEmailConfirmationByToken(ctx, token)
	if err != nil {
		logUpstream("confirm.GetEmailConfirmationByToken", err)
		renderConfirmResult(w, http.StatusInternalServerError, "Error", "Something went wrong, please try again later.")
		return
	}
	if confirmation == nil {
		renderConfirmResult(w, http.StatusBadRequest, "Invalid link", "This confirmation link is unknown.")
		return
	}
	if confirmation.Confirmed {
		renderConfirmResult(w, http.StatusBadRequest, "Already confirmed", "This email address has already been confirmed.")
		return
	}
	if time.Since(confirmation.SentAt) > confirmationTTL {
		renderConfirmResult(w, http.StatusBadRequest, "Link expired", "This confirmation link has expired.")
		return
	}

	preferences, err := h.Store.GetPreferences(ctx, confirmation.Npub)
	if err != nil {
		logUpstream("confirm.GetPreferences", err)
		renderConfirmResult(w, http.StatusInternalServerError, "Error", "Something went wrong, please try again later.")
		return
	}
	if preferences == nil {
		renderConfirmResult(w, http.StatusBadRequest, "Invalid link", "No matching registration was found.")
		return
	}
	if preferences.Email != confirmation.Email {
		renderConfirmResult(w, http.StatusBadRequest, "Invalid link", "This confirmation link no longer matches the registered address.")
		return
	}

	if err := h.Store.ConfirmEmail(ctx, confirmation.Npub); err != nil {
		logUpstream("confirm.ConfirmEmail", err)
		renderConfirmResult(w, http.StatusInternalServerError, "Error", "Something went wrong, please try again later.")
		return
	}

	renderConfirmResult(w, http.StatusOK, "Email confirmed", "Your email address has been confirmed. You will now receive notifications for your eBills.")
}
