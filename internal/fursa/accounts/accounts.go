package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/fursaconnect/fursa/internal/logutil"
)

const (
	twitterStatusPath      = "/auth/twitter2/test"
	accountsPath           = "/user/social-accounts"
	telegramConnectPath    = "/telegram/connect"
	telegramDisconnectPath = "/telegram/disconnect"
)

// excluded platforms are connected for analytics only.
var excluded = map[fursa.PlatformID]struct{}{
	"youtube": {},
}

// Account is a social network connected to the user's FursaConnect profile.
type Account struct {
	Platform       fursa.PlatformID `json:"platform"`
	PlatformUserID string           `json:"platform_user_id"`
	Metadata       json.RawMessage  `json:"metadata,omitempty"`
}

// Publishable reports whether fursa can publish to the account.
func (a Account) Publishable() bool {
	for _, p := range fursa.PublishablePlatforms {
		if a.Platform == p {
			return true
		}
	}
	return false
}

// Client discovers connected accounts.
type Client struct {
	backend *backend.Client
}

// New constructs an accounts client.
func New(b *backend.Client) *Client {
	return &Client{backend: b}
}

// List returns the connected accounts. X is reported from its own connection
// check rather than the account list. A failing account list still yields the
// X result.
func (c *Client) List(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if c.twitterConnected(ctx) {
		accounts = append(accounts, Account{
			Platform:       fursa.Twitter,
			PlatformUserID: "twitter_user",
			Metadata:       json.RawMessage(`{"connected":true}`),
		})
	}

	var reply struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.backend.GetJSON(ctx, accountsPath, &reply); err != nil {
		logutil.Warnf("load social accounts: %v", err)
		return accounts, nil
	}

	for _, acc := range reply.Accounts {
		acc.Platform = fursa.ParsePlatform(string(acc.Platform))
		if acc.Platform == fursa.Twitter {
			continue
		}
		if _, skip := excluded[acc.Platform]; skip {
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// ConnectedTargets returns the publishable platforms among the accounts, in
// listing order.
func ConnectedTargets(accounts []Account) []fursa.PlatformID {
	var out []fursa.PlatformID
	seen := map[fursa.PlatformID]struct{}{}
	for _, acc := range accounts {
		if !acc.Publishable() {
			continue
		}
		if _, ok := seen[acc.Platform]; ok {
			continue
		}
		seen[acc.Platform] = struct{}{}
		out = append(out, acc.Platform)
	}
	return out
}

func (c *Client) twitterConnected(ctx context.Context) bool {
	var reply backend.Envelope
	if err := c.backend.GetJSON(ctx, twitterStatusPath, &reply); err != nil {
		logutil.Debugf("twitter connection check: %v", err)
		return false
	}
	return reply.Success != nil && *reply.Success
}

// ConnectTelegram links a Telegram channel or chat to the user's profile.
// chatID is either a numeric chat id or an @channel username the FursaConnect
// bot administers.
func (c *Client) ConnectTelegram(ctx context.Context, userID, chatID string) error {
	userID = strings.TrimSpace(userID)
	chatID = strings.TrimSpace(chatID)
	if userID == "" {
		return &fursa.ValidationError{Field: "user", Reason: "user id is required to connect telegram"}
	}
	if chatID == "" {
		return &fursa.ValidationError{Field: "chat", Reason: "telegram chat id or channel username is required"}
	}

	var reply backend.Envelope
	err := c.backend.PostJSON(ctx, telegramConnectPath, struct {
		UserID string `json:"userId"`
		ChatID string `json:"chatId"`
	}{userID, chatID}, &reply)
	if err != nil {
		return fmt.Errorf("connect telegram: %w", err)
	}
	return confirm(reply, "failed to connect telegram")
}

// DisconnectTelegram unlinks the Telegram chat from the signed in user.
func (c *Client) DisconnectTelegram(ctx context.Context) error {
	var reply backend.Envelope
	if err := c.backend.Delete(ctx, telegramDisconnectPath, &reply); err != nil {
		return fmt.Errorf("disconnect telegram: %w", err)
	}
	return confirm(reply, "failed to disconnect telegram")
}

// confirm requires an explicit success flag.
func confirm(reply backend.Envelope, fallback string) error {
	if reply.Success != nil && *reply.Success {
		return nil
	}
	if reason := reply.Reason(); reason != "" {
		return fmt.Errorf("%s: %s", fallback, reason)
	}
	return errors.New(fallback)
}
