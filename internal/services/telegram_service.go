package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramService pushes short notifications to profiles that stored a chat
// ID and opted in. A nil service or empty token makes every send a no-op, so
// callers never have to branch on whether the bot is configured.
type TelegramService struct {
	bot    *tgbotapi.BotAPI
	dryRun bool
}

func NewTelegramService(botToken string, dryRun bool) *TelegramService {
	svc := &TelegramService{dryRun: dryRun}
	if botToken == "" || dryRun {
		return svc
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[tg][init][err] %v (notifications disabled)", err)
		return svc
	}
	svc.bot = bot
	return svc
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	if t == nil || chatID == 0 {
		return nil
	}
	if t.bot == nil {
		log.Printf("[tg][skip] chatID=%d text=%q", chatID, text)
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] chatID=%d: %v", chatID, err)
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}
