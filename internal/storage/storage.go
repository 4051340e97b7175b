package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"gorm.io/gorm"

	"popin/backend/internal/models"
)

// ErrPlaceNotFound is returned when a place ID does not exist in the directory.
var ErrPlaceNotFound = eris.New("place not found")

const (
	roomChannelPrefix   = "popin:room:"
	notificationChannel = "popin:notifications"
	activeSessionsKey   = "popin:sessions"
)

// Storage is the persistence contract consumed by the hub, the handlers, and
// the notification sink.
type Storage interface {
	ListActivePlaces() ([]models.Place, error)
	GetPlaceByID(id string) (*models.Place, error)
	SavePlace(place *models.Place) error
	DeactivatePlace(id string) error

	SaveMessage(msg *models.ChatMessage) error
	GetChatHistory(placeID string, limit int) ([]models.ChatHistory, error)
	PublishMessage(placeID string, msg models.ChatMessage) error
	SubscribeMessages() *redis.PubSub

	SaveNotification(entry *models.NotificationLog) error
	PublishNotification(event models.NotificationEvent) error

	SaveCheckIn(checkIn *models.CheckIn) error

	MarkSessionActive(sessionID string) error
	EndSession(sessionID string) error
	ActiveSessions() ([]string, error)
}

// Service implements Storage over PostgreSQL (gorm) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService constructs the storage service. redis may be nil for tooling
// that only touches the database (the admin CLI).
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// ListActivePlaces returns the snapshot of places that participate in
// proximity evaluation.
func (s *Service) ListActivePlaces() ([]models.Place, error) {
	var places []models.Place
	if err := s.DB.Where("is_active = ?", true).Order("name asc").Find(&places).Error; err != nil {
		return nil, eris.Wrap(err, "list active places")
	}
	return places, nil
}

func (s *Service) GetPlaceByID(id string) (*models.Place, error) {
	var place models.Place
	err := s.DB.Where("id = ?", id).First(&place).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, eris.Wrapf(ErrPlaceNotFound, "id %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "get place")
	}
	return &place, nil
}

// SavePlace inserts or updates a place in the directory.
func (s *Service) SavePlace(place *models.Place) error {
	if err := s.DB.Save(place).Error; err != nil {
		return eris.Wrap(err, "save place")
	}
	return nil
}

// DeactivatePlace flips the active flag. Watchers discard the place's state
// on their next tick.
func (s *Service) DeactivatePlace(id string) error {
	res := s.DB.Model(&models.Place{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return eris.Wrap(res.Error, "deactivate place")
	}
	if res.RowsAffected == 0 {
		return eris.Wrapf(ErrPlaceNotFound, "id %s", id)
	}
	return nil
}

// SaveMessage persists a room message and backfills the message ID so the
// same struct can be published.
func (s *Service) SaveMessage(msg *models.ChatMessage) error {
	history := models.ChatHistory{
		PlaceID:  msg.PlaceID,
		SenderID: msg.SenderID,
		Content:  msg.Content,
		Type:     msg.Type,
	}
	if err := s.DB.Create(&history).Error; err != nil {
		return eris.Wrapf(err, "save message for place %s", msg.PlaceID)
	}
	msg.ID = history.ID
	return nil
}

// GetChatHistory returns up to limit most recent messages for a room, oldest
// first. limit <= 0 means no cap.
func (s *Service) GetChatHistory(placeID string, limit int) ([]models.ChatHistory, error) {
	var history []models.ChatHistory
	q := s.DB.Where("place_id = ?", placeID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&history).Error; err != nil {
		return nil, eris.Wrapf(err, "chat history for place %s", placeID)
	}
	// Reverse into chronological order for the client.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

// PublishMessage fans a room message out over the room's Redis channel.
func (s *Service) PublishMessage(placeID string, msg models.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return eris.Wrap(err, "marshal message")
	}
	if err := s.Redis.Publish(s.Ctx, roomChannelPrefix+placeID, payload).Err(); err != nil {
		return eris.Wrapf(err, "publish to room %s", placeID)
	}
	return nil
}

// SubscribeMessages subscribes to every room channel.
func (s *Service) SubscribeMessages() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, roomChannelPrefix+"*")
}

func (s *Service) SaveNotification(entry *models.NotificationLog) error {
	if err := s.DB.Create(entry).Error; err != nil {
		return eris.Wrapf(err, "save notification for place %s", entry.PlaceID)
	}
	return nil
}

// PublishNotification pushes an alert onto the shared notification channel
// for external dispatchers.
func (s *Service) PublishNotification(event models.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return eris.Wrap(err, "marshal notification")
	}
	if err := s.Redis.Publish(s.Ctx, notificationChannel, payload).Err(); err != nil {
		return eris.Wrap(err, "publish notification")
	}
	return nil
}

func (s *Service) SaveCheckIn(checkIn *models.CheckIn) error {
	if err := s.DB.Create(checkIn).Error; err != nil {
		return eris.Wrap(err, "save check-in")
	}
	return nil
}

// MarkSessionActive records the session in the Redis presence set.
func (s *Service) MarkSessionActive(sessionID string) error {
	if err := s.Redis.SAdd(s.Ctx, activeSessionsKey, sessionID).Err(); err != nil {
		return eris.Wrap(err, "mark session active")
	}
	return nil
}

// EndSession removes the session from the presence set.
func (s *Service) EndSession(sessionID string) error {
	if err := s.Redis.SRem(s.Ctx, activeSessionsKey, sessionID).Err(); err != nil {
		return eris.Wrap(err, "end session")
	}
	return nil
}

// ActiveSessions lists sessions currently in the presence set.
func (s *Service) ActiveSessions() ([]string, error) {
	sessions, err := s.Redis.SMembers(s.Ctx, activeSessionsKey).Result()
	if err != nil {
		return nil, eris.Wrap(err, "active sessions")
	}
	return sessions, nil
}

var _ Storage = (*Service)(nil)
