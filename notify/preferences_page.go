package notify

import (
	"context"
	"html/template"
	"net/http"

	"github.com/bitcredit-protocol/bcr-relay/store"
)

var preferencesTemplate = template.Must(template.New("preferences").Parse(`
<!doctype html>
<html><head><meta charset="UTF-8"><title>Notification preferences</title></head>
<body style="font-family: Geist, system-ui, sans-serif; max-width:650px; margin:40px auto;">
  <h1>Notification preferences</h1>
  <form method="POST" action="/notifications/update_preferences">
    <input type="hidden" name="token" value="{{.Token}}">
    <label><input type="checkbox" name="enabled" value="true" {{if .Enabled}}checked{{end}}> Receive email notifications</label>
    <ul style="list-style:none; padding-left:0;">
    {{range .Fields}}
      <li><label><input type="checkbox" name="flags" value="{{.Name}}" {{if .Checked}}checked{{end}}> {{.Name}}</label></li>
    {{end}}
    </ul>
    <button type="submit">Save</button>
  </form>
</body></html>
`))

type preferencesPageContext struct {
	Token   string
	Enabled bool
	Fields  []preferencesFormField
}

// Preferences handles GET /notifications/preferences/{token}, serving the
// preferences form for a confirmed receiver.
func (h *Handler) Preferences(w http.ResponseWriter, r *http.Request, token string) {
	ctx := r.Context()
	prefs, err := h.preferencesForToken(ctx, token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}
	if prefs == nil || !prefs.EmailConfirmed {
		writeError(w, http.StatusBadRequest, "Invalid token")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = preferencesTemplate.Execute(w, preferencesPageContext{
		Token:   token,
		Enabled: prefs.Enabled,
		Fields:  PreferencesFlags(prefs.Flags).formFields(),
	})
}

func (h *Handler) preferencesForToken(ctx context.Context, token string) (*store.EmailPreferences, error) {
	return h.Store.GetPreferencesByToken(ctx, token)
}
