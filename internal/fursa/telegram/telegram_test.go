package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	hits   atomic.Int32
	userID string
	text   string
	images int
}

func newServer(t *testing.T, status int, reply string) (*backend.Client, *capture) {
	t.Helper()
	got := &capture{}
	r := chi.NewRouter()
	r.Post(sendPath, func(w http.ResponseWriter, req *http.Request) {
		got.hits.Add(1)
		if assert.NoError(t, req.ParseMultipartForm(10<<20)) {
			got.userID = req.FormValue("userId")
			got.text = req.FormValue("text")
			got.images = len(req.MultipartForm.File["images"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client, err := backend.New(backend.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return client, got
}

func TestSendWithUser(t *testing.T) {
	client, got := newServer(t, http.StatusOK, `{"success":true}`)

	images := []fursa.ImageAsset{
		{Name: "a.png", MediaType: "image/png", Data: []byte("a")},
		{Name: "b.gif", MediaType: "image/gif", Data: []byte("b")},
	}
	receipt, err := New(client, StaticUser("42")).Send(context.Background(), "Channel news", images)
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.Equal(t, int32(1), got.hits.Load())
	assert.Equal(t, "42", got.userID)
	assert.Equal(t, "Channel news", got.text)
	assert.Equal(t, 2, got.images)
}

func TestSendWithoutUserMakesNoRequest(t *testing.T) {
	tests := []struct {
		name string
		user UserIDFunc
	}{
		{name: "nil resolver", user: nil},
		{name: "empty id", user: StaticUser("")},
		{name: "blank id", user: StaticUser("   ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, got := newServer(t, http.StatusOK, `{"success":true}`)

			_, err := New(client, tt.user).Send(context.Background(), "hi", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, fursa.ErrNotAuthenticated)
			assert.Equal(t, "user not authenticated", err.Error())
			assert.Zero(t, got.hits.Load())
		})
	}
}

func TestSendUserLookupFails(t *testing.T) {
	client, got := newServer(t, http.StatusOK, `{"success":true}`)

	lookup := func(context.Context) (string, error) { return "", errors.New("auth service down") }
	_, err := New(client, lookup).Send(context.Background(), "hi", nil)

	var pe *fursa.PlatformError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "auth service down", pe.Message)
	assert.Zero(t, got.hits.Load())
}

func TestSendFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		reply   string
		message string
	}{
		{name: "success false", status: http.StatusOK, reply: `{"success":false,"error":"Telegram channel not linked"}`, message: "Telegram channel not linked"},
		{name: "missing flag", status: http.StatusOK, reply: `{}`, message: "telegram API error: missing success flag"},
		{name: "server error", status: http.StatusInternalServerError, reply: `{"success":false,"error":"bot blocked"}`, message: "bot blocked"},
		{name: "server error without body", status: http.StatusServiceUnavailable, reply: ``, message: "telegram API error: 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newServer(t, tt.status, tt.reply)

			_, err := New(client, StaticUser("7")).Send(context.Background(), "hi", nil)
			var pe *fursa.PlatformError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, fursa.Telegram, pe.Platform)
			assert.Equal(t, tt.message, pe.Message)
		})
	}
}
