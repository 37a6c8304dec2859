package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskhub/internal/model"
)

// Telegram sends notifications through a Telegram bot. Users without a
// chat id are skipped silently.
type Telegram struct {
	api *tgbotapi.BotAPI
}

func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{api: api}, nil
}

func (t *Telegram) TaskAssigned(ctx context.Context, task *model.Task, assignee *model.User) error {
	if assignee == nil || assignee.TelegramChatID == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("📌 <b>New task assigned to you</b>\n")
	sb.WriteString(html.EscapeString(strings.TrimSpace(task.Title)))
	if task.DueDate != nil {
		sb.WriteString(fmt.Sprintf("\n⏰ due %s", task.DueDate.Format("2006-01-02")))
	}
	return t.send(ctx, assignee.TelegramChatID, sb.String())
}

func (t *Telegram) TaskDue(ctx context.Context, task *model.Task, recipient *model.User) error {
	if recipient == nil || recipient.TelegramChatID == 0 {
		return nil
	}
	msg := fmt.Sprintf("⏳ <b>Task due today</b>\n%s", html.EscapeString(strings.TrimSpace(task.Title)))
	return t.send(ctx, recipient.TelegramChatID, msg)
}

func (t *Telegram) send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
