// Package telegram sends lifecycle notifications to an operator chat.
// The feature is off unless a notify config file exists and is enabled,
// so the panel works identically without it.
package telegram

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/go-telegram/bot"

	"github.com/ptpanel/ptpanel/logger"
)

type Notifier struct {
	config *Config
}

// LoadNotifier reads the notify config at path. A missing file disables
// notifications.
func LoadNotifier(path string) *Notifier {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warningf("read notify config %s: %v", path, err)
		}
		return &Notifier{}
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		logger.Warningf("parse notify config %s: %v", path, err)
		return &Notifier{}
	}
	return &Notifier{config: &cfg}
}

func (n *Notifier) Enabled() bool {
	return n.config != nil && n.config.Enabled && n.config.BotToken != ""
}

// Notify sends text to the configured chat. Failures are logged and
// swallowed; notification is never allowed to fail a lifecycle command.
func (n *Notifier) Notify(ctx context.Context, text string) {
	if !n.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	b, err := bot.New(n.config.BotToken)
	if err != nil {
		logger.Warningf("telegram bot init: %v", err)
		return
	}
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.config.ChatID,
		Text:   text,
	})
	if err != nil {
		logger.Warningf("telegram notify: %v", err)
	}
}
