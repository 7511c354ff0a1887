package telegramimpl

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendMarkdown sends a MarkdownV2 message to a specific chat ID
func (tg *TelegramImpl) SendMarkdown(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	return tg.send(msg)
}

func (tg *TelegramImpl) send(msg tgbotapi.MessageConfig) (int, error) {
	sentMsg, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message",
			"chatID", msg.ChatID,
			"error", err)
		return 0, fmt.Errorf("failed to send message: %w", err)
	}

	tg.Logger.Debug("Message sent",
		"chatID", msg.ChatID,
		"messageID", sentMsg.MessageID)
	return sentMsg.MessageID, nil
}
