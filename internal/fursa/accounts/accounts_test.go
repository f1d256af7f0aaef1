package accounts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	statusCode    int
	statusBody      string
	accountsStatus int
	accountsBody   string
}

func (f fakeBackend) start(t *testing.T) *backend.Client {
	t.Helper()
	r := chi.NewRouter()
	r.Get(twitterStatusPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(f.statusCode)
		_, _ = w.Write([]byte(f.statusBody))
	})
	r.Get(accountsPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(f.accountsStatus)
		_, _ = w.Write([]byte(f.accountsBody))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client, err := backend.New(backend.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return client
}

func platforms(accounts []Account) []fursa.PlatformID {
	out := make([]fursa.PlatformID, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Platform)
	}
	return out
}

func TestListMergesTwitterStatus(t *testing.T) {
	client := fakeBackend{
		statusCode:    http.StatusOK,
		statusBody:      `{"success":true}`,
		accountsStatus: http.StatusOK,
		accountsBody: `{"accounts":[
			{"platform":"twitter","platform_user_id":"stale"},
			{"platform":"LinkedIn","platform_user_id":"li-1","metadata":{"name":"Amina"}},
			{"platform":"youtube","platform_user_id":"yt-1"},
			{"platform":"telegram","platform_user_id":"tg-1"},
			{"platform":"facebook","platform_user_id":"fb-1"}
		]}`,
	}.start(t)

	list, err := New(client).List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []fursa.PlatformID{fursa.Twitter, fursa.LinkedIn, fursa.Telegram, "facebook"}, platforms(list))
	assert.Equal(t, "twitter_user", list[0].PlatformUserID)
	assert.JSONEq(t, `{"name":"Amina"}`, string(list[1].Metadata))
	assert.False(t, list[3].Publishable())

	assert.Equal(t, []fursa.PlatformID{fursa.Twitter, fursa.LinkedIn, fursa.Telegram}, ConnectedTargets(list))
}

func TestListTwitterNotConnected(t *testing.T) {
	client := fakeBackend{
		statusCode:    http.StatusUnauthorized,
		statusBody:      `{"error":"no token"}`,
		accountsStatus: http.StatusOK,
		accountsBody:   `{"accounts":[{"platform":"telegram","platform_user_id":"tg-1"}]}`,
	}.start(t)

	list, err := New(client).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []fursa.PlatformID{fursa.Telegram}, platforms(list))
}

func TestListAccountsFailureKeepsTwitter(t *testing.T) {
	client := fakeBackend{
		statusCode:    http.StatusOK,
		statusBody:      `{"success":true}`,
		accountsStatus: http.StatusInternalServerError,
		accountsBody:   `{"error":"db down"}`,
	}.start(t)

	list, err := New(client).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []fursa.PlatformID{fursa.Twitter}, platforms(list))
}

func TestConnectedTargetsDeduplicates(t *testing.T) {
	list := []Account{{Platform: fursa.LinkedIn}, {Platform: "instagram"}, {Platform: fursa.LinkedIn}, {Platform: fursa.Twitter}}
	assert.Equal(t, []fursa.PlatformID{fursa.LinkedIn, fursa.Twitter}, ConnectedTargets(list))
	assert.Empty(t, ConnectedTargets(nil))
}

type telegramLink struct {
	status int
	reply  string
	body   map[string]string
	method string
	cookie string
}

func (l *telegramLink) start(t *testing.T) *backend.Client {
	t.Helper()
	r := chi.NewRouter()
	r.Post(telegramConnectPath, func(w http.ResponseWriter, req *http.Request) {
		l.method = req.Method
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&l.body))
		w.WriteHeader(l.status)
		_, _ = w.Write([]byte(l.reply))
	})
	r.Delete(telegramDisconnectPath, func(w http.ResponseWriter, req *http.Request) {
		l.method = req.Method
		if c, err := req.Cookie("access_token"); err == nil {
			l.cookie = c.Value
		}
		w.WriteHeader(l.status)
		_, _ = w.Write([]byte(l.reply))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := backend.NewJar()
	require.NoError(t, err)
	client, err := backend.New(backend.Options{BaseURL: srv.URL, Jar: jar})
	require.NoError(t, err)
	jar.SetCookies(client.BaseURL(), []*http.Cookie{{Name: "access_token", Value: "tok"}})
	return client
}

func TestConnectTelegram(t *testing.T) {
	link := &telegramLink{status: http.StatusOK, reply: `{"success":true}`}
	client := link.start(t)

	require.NoError(t, New(client).ConnectTelegram(context.Background(), " 5 ", " @fursa_news "))
	assert.Equal(t, http.MethodPost, link.method)
	assert.Equal(t, map[string]string{"userId": "5", "chatId": "@fursa_news"}, link.body)
}

func TestConnectTelegramFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		want   string
	}{
		{name: "error field", status: http.StatusOK, reply: `{"success":false,"error":"Bot is not an admin of this channel"}`, want: "failed to connect telegram: Bot is not an admin of this channel"},
		{name: "no success flag", status: http.StatusOK, reply: `{}`, want: "failed to connect telegram"},
		{name: "empty reply", status: http.StatusOK, reply: ``, want: "connect telegram: empty response body"},
		{name: "rejected", status: http.StatusBadRequest, reply: `{"error":"chat not found"}`, want: "chat not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := (&telegramLink{status: tt.status, reply: tt.reply}).start(t)
			err := New(client).ConnectTelegram(context.Background(), "5", "-100123")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConnectTelegramValidation(t *testing.T) {
	link := &telegramLink{status: http.StatusOK, reply: `{"success":true}`}
	client := link.start(t)

	err := New(client).ConnectTelegram(context.Background(), "5", "  ")
	assert.True(t, fursa.IsValidationError(err))
	err = New(client).ConnectTelegram(context.Background(), "", "@fursa_news")
	assert.True(t, fursa.IsValidationError(err))
	assert.Empty(t, link.method, "nothing is sent for invalid input")
}

func TestDisconnectTelegram(t *testing.T) {
	link := &telegramLink{status: http.StatusOK, reply: `{"success":true}`}
	client := link.start(t)

	require.NoError(t, New(client).DisconnectTelegram(context.Background()))
	assert.Equal(t, http.MethodDelete, link.method)
	assert.Equal(t, "tok", link.cookie)

	failed := (&telegramLink{status: http.StatusOK, reply: `{"success":false,"message":"No Telegram account connected"}`}).start(t)
	err := New(failed).DisconnectTelegram(context.Background())
	assert.EqualError(t, err, "failed to disconnect telegram: No Telegram account connected")
}
