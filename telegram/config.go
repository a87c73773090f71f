package telegram

type Config struct {
	BotToken string `json:"bot_token"`
	ChatID   int64  `json:"chat_id"`
	Enabled  bool   `json:"enabled"`
}
