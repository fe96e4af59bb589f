// Package notification provides the Telegram delivery channel for
// all-time-low alerts.
package notification

import (
	"fmt"
	"time"

	"slices"

	"atlwatch/pkg/core"
	"atlwatch/pkg/logger"

	tb "gopkg.in/tucnak/telebot.v2"
)

// StatusFunc produces the text sent in reply to the /status command.
type StatusFunc func() string

// telegram implements the core.NotifierWithStart interface
type telegram struct {
	settings *core.Settings
	log      logger.Logger
	status   StatusFunc
	client   *tb.Bot
}

// Option is a function that configures a telegram instance
type Option func(telegram *telegram)

// WithStatusFunc wires the /status command to the given provider.
func WithStatusFunc(fn StatusFunc) Option {
	return func(t *telegram) {
		t.status = fn
	}
}

// NewTelegram creates and initializes a new Telegram service
func NewTelegram(settings *core.Settings, log logger.Logger, options ...Option) (core.NotifierWithStart, error) {
	poller := &tb.LongPoller{Timeout: 10 * time.Second}
	userMiddleware := createAuthMiddleware(poller, settings, log)

	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeHTML,
		Token:     settings.Telegram.Token,
		Poller:    userMiddleware,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	err = client.SetCommands([]tb.Command{
		{Text: "/status", Description: "Current all-time low and last check time"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set commands: %w", err)
	}

	bot := &telegram{
		settings: settings,
		log:      log,
		client:   client,
	}

	for _, option := range options {
		option(bot)
	}

	client.Handle("/status", bot.StatusHandle)

	return bot, nil
}

// createAuthMiddleware creates a middleware to validate authorized users
func createAuthMiddleware(poller *tb.LongPoller, settings *core.Settings, log logger.Logger) *tb.MiddlewarePoller {
	return tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			log.Error("message or sender is nil ", u)
			return false
		}

		if slices.Contains(settings.Telegram.Users, int(u.Message.Sender.ID)) {
			return true
		}

		log.WithField("user", u.Message.Sender.ID).Error("unauthorized user")
		return false
	})
}

// Start begins long polling so the /status command is answered.
func (t *telegram) Start() {
	go t.client.Start()
}

// Notify sends a message to all authorized users
func (t *telegram) Notify(text string) {
	for _, user := range t.settings.Telegram.Users {
		_, err := t.client.Send(&tb.User{ID: int64(user)}, text)
		if err != nil {
			t.log.WithError(err).WithField("user", user).Error("failed to send notification")
		}
	}
}

// StatusHandle replies with the tracker status
func (t *telegram) StatusHandle(m *tb.Message) {
	if t.status == nil {
		t.sendMessage(m.Sender, fmt.Sprintf("%s tracker is running.", t.settings.Asset))
		return
	}
	t.sendMessage(m.Sender, t.status())
}

// sendMessage sends a message to a specific user
func (t *telegram) sendMessage(to *tb.User, text string) {
	_, err := t.client.Send(to, text)
	if err != nil {
		t.log.WithError(err).Error("failed to send message")
	}
}
