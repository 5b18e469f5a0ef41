package notify

import "net/http"

// UpdatePreferences handles POST /notifications/update_preferences, an
// application/x-www-form-urlencoded submission of the preferences form.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form")
		return
	}

	token := r.FormValue("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Missing token")
		return
	}

	ctx := r.Context()
	prefs, err := h.Store.GetPreferencesByToken(ctx, token)
	if err != nil {
		logUpstream("updatePreferences.GetPreferencesByToken", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}
	if prefs == nil || !prefs.EmailConfirmed {
		writeError(w, http.StatusBadRequest, "Invalid token")
		return
	}

	enabled := r.FormValue("enabled") == "true"
	flags := FlagsFromFormValues(r.Form["flags"])

	if err := h.Store.UpdatePreferences(ctx, prefs.Npub, enabled, int64(flags)); err != nil {
		logUpstream("updatePreferences.UpdatePreferences", err)
		writeError(w, http.StatusInternalServerError, "Upstream error")
		return
	}

	http.Redirect(w, r, "/notifications/preferences/"+token, http.StatusSeeOther)
}
