package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildConfirmationEmail(t *testing.T) {
	msg, err := BuildConfirmationEmail("https://relay.example", "noreply@bitcredit.example", "alice@example.com", "tok123")
	require.NoError(t, err)
	require.Equal(t, "noreply@bitcredit.example", msg.From)
	require.Equal(t, "alice@example.com", msg.To)
	require.Equal(t, "Please confirm your E-Mail", msg.Subject)
	require.Contains(t, msg.Body, "https://relay.example/notifications/confirm_email?token=tok123")
}

func TestBuildNotificationEmail(t *testing.T) {
	msg, err := BuildNotificationEmail(
		"https://relay.example", "https://ebill.example",
		"noreply@bitcredit.example", "bob@example.com",
		"An eBill has been accepted.", "bitcrABC123", "preftoken")
	require.NoError(t, err)
	require.Equal(t, "An eBill has been accepted.", msg.Subject)
	require.Contains(t, msg.Body, "https://ebill.example/bill/bitcrABC123")
	require.Contains(t, msg.Body, "https://relay.example/notifications/preferences/preftoken")
}

func TestBuildNotificationEmailEscapesBillID(t *testing.T) {
	msg, err := BuildNotificationEmail(
		"https://relay.example", "https://ebill.example",
		"noreply@bitcredit.example", "bob@example.com",
		"title", `"><script>alert(1)</script>`, "preftoken")
	require.NoError(t, err)
	require.NotContains(t, msg.Body, "<script>alert(1)</script>")
}

func TestMailjetSenderSendsSuccessfulMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3.1/send", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "key", user)
		require.Equal(t, "secret", pass)

		var body mailjetRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 1)
		require.Equal(t, "alice@example.com", body.Messages[0].To[0].Email)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Messages":[{"Status":"success"}]}`))
	}))
	defer srv.Close()

	sender := NewMailjetSender(srv.URL, "key", "secret")
	err := sender.Send(context.Background(), Message{
		From: "noreply@bitcredit.example", To: "alice@example.com",
		Subject: "hi", Body: "<p>hi</p>",
	})
	require.NoError(t, err)
}

func TestMailjetSenderRejectsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Messages":[{"Status":"error"}]}`))
	}))
	defer srv.Close()

	sender := NewMailjetSender(srv.URL, "key", "secret")
	err := sender.Send(context.Background(), Message{From: "a@b.com", To: "c@d.com", Subject: "s", Body: "b"})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "error"))
}
