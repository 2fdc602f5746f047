package ratelimiter

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	sentAt []time.Time
}

func (f *fakeSender) Send(_ tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sentAt = append(f.sentAt, time.Now())

	return tgbotapi.Message{MessageID: len(f.sentAt)}, nil
}

func (f *fakeSender) Request(_ tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestGetDelay(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		chatID   int64
		lastSent time.Time
		wantZero bool
	}{
		{"Private chat - no delay needed", 123456789, now.Add(-2 * time.Second), true},
		{"Private chat - delay needed", 123456789, now.Add(-500 * time.Millisecond), false},
		{"Group chat - no delay needed", -123456789, now.Add(-4 * time.Second), true},
		{"Group chat - delay needed", -123456789, now.Add(-1 * time.Second), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := getDelay(test.chatID, test.lastSent)

			if test.wantZero {
				assert.Zero(t, got)
			} else {
				assert.Positive(t, got)
			}
		})
	}
}

func TestGetChatID(t *testing.T) {
	assert.Equal(t, int64(42), getChatID(tgbotapi.NewMessage(42, "text")))
	assert.Equal(t, int64(-7), getChatID(tgbotapi.NewChatAction(-7, tgbotapi.ChatTyping)))
	assert.Equal(t, int64(0), getChatID(tgbotapi.NewCallback("query", "text")))
}

func TestRateLimiterSpacesMessagesPerChat(t *testing.T) {
	sender := &fakeSender{}
	rl := New(sender, slog.Default())
	t.Cleanup(rl.Stop)

	_, err := rl.Send(tgbotapi.NewMessage(1, "first"))
	require.NoError(t, err)
	_, err = rl.Send(tgbotapi.NewMessage(1, "second"))
	require.NoError(t, err)

	sender.mu.Lock()
	defer sender.mu.Unlock()

	require.Len(t, sender.sentAt, 2)
	assert.GreaterOrEqual(t, sender.sentAt[1].Sub(sender.sentAt[0]), privateChatRate-50*time.Millisecond)
}

func TestRateLimiterStopFailsPendingSends(t *testing.T) {
	rl := New(&fakeSender{}, slog.Default())
	rl.Stop()

	_, err := rl.Send(tgbotapi.NewMessage(1, "late"))
	require.Error(t, err)
}
