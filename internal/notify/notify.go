// Package notify delivers proximity alerts. The watcher hands it one alert
// per episode; delivery fans out to the Redis notification channel, the audit
// log, and (when configured) a Telegram ops channel. Nothing here retries.
package notify

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"popin/backend/internal/models"
	"popin/backend/internal/storage"
)

// Service implements proximity.Notifier.
type Service struct {
	store storage.Storage
	log   *zap.Logger

	bot       *tgbotapi.BotAPI
	alertChat int64
	now       func() time.Time
}

func NewService(store storage.Storage, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log, now: time.Now}
}

// EnableTelegram connects the bot API and routes every alert to chatID as
// well. Used as an ops feed mirroring what users are being notified about.
func (s *Service) EnableTelegram(token string, chatID int64) error {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return eris.Wrap(err, "telegram auth")
	}
	bot.Debug = false
	s.bot = bot
	s.alertChat = chatID
	s.log.Info("telegram alerts enabled", zap.String("bot", bot.Self.UserName))
	return nil
}

// Notify publishes the alert on the notification channel, mirrors it to
// Telegram when enabled, and writes the audit row. The first delivery error
// is returned for the caller to log; partial delivery is not rolled back.
func (s *Service) Notify(sessionID, placeID, title, body string) error {
	event := models.NotificationEvent{
		SessionID: sessionID,
		PlaceID:   placeID,
		Title:     title,
		Body:      body,
		SentAt:    s.now(),
	}

	delivered := true
	var firstErr error

	if err := s.store.PublishNotification(event); err != nil {
		delivered = false
		firstErr = err
		s.log.Warn("notification publish failed", zap.String("place_id", placeID), zap.Error(err))
	}

	if s.bot != nil {
		msg := tgbotapi.NewMessage(s.alertChat, title+"\n"+body)
		if _, err := s.bot.Send(msg); err != nil {
			delivered = false
			if firstErr == nil {
				firstErr = eris.Wrap(err, "telegram send")
			}
			s.log.Warn("telegram delivery failed", zap.String("place_id", placeID), zap.Error(err))
		}
	}

	entry := &models.NotificationLog{
		SessionID: sessionID,
		PlaceID:   placeID,
		Title:     title,
		Body:      body,
		Delivered: delivered,
	}
	if err := s.store.SaveNotification(entry); err != nil {
		if firstErr == nil {
			firstErr = err
		}
		s.log.Warn("notification audit write failed", zap.String("place_id", placeID), zap.Error(err))
	}

	return firstErr
}
