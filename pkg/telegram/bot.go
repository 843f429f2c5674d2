package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot представляет Telegram бота для уведомлений преподавателя
type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewBot создает новый экземпляр бота
func NewBot(token string, chatID int64) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	bot.Debug = false

	return &Bot{api: bot, chatID: chatID}, nil
}

// NotifyModelTrained отправляет отчет об обученной модели
func (b *Bot) NotifyModelTrained(className, version string, validationScore, mae float64, samples int) error {
	if b == nil {
		return nil
	}

	text := fmt.Sprintf(
		"📊 Модель обновлена\n\nКласс: %s\nВерсия: %s\nValidation R²: %.3f\nMAE: %.2f\nОбучающих примеров: %d",
		className, version, validationScore, mae, samples,
	)
	return b.send(text)
}

// NotifyStudentAtRisk отправляет предупреждение о прогнозируемой неуспеваемости
func (b *Bot) NotifyStudentAtRisk(studentName, className string, predictedGrade, confidence float64) error {
	if b == nil {
		return nil
	}

	text := fmt.Sprintf(
		"⚠️ Риск неуспеваемости\n\nУченик: %s\nКласс: %s\nПрогноз: %.1f (порог 51)\nУверенность: %.0f%%",
		studentName, className, predictedGrade, confidence,
	)
	return b.send(text)
}

func (b *Bot) send(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
