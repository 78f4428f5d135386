package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/daengle/petcare-backend/internal/logger"
	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/pkg/apperror"
	"github.com/daengle/petcare-backend/internal/repository"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, accountID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, accountID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountUnread(ctx context.Context, accountID uuid.UUID) (int, error)
}

// Pusher доставляет событие в открытые websocket-соединения пользователя.
type Pusher interface {
	Push(accountID uuid.UUID, payload []byte)
}

// NotificationService содержит бизнес-логику работы с уведомлениями.
type NotificationService struct {
	repo   NotificationRepository
	pusher Pusher
}

// NewNotificationService создаёт новый сервис уведомлений.
func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// SetPusher подключает websocket-доставку.
func (s *NotificationService) SetPusher(p Pusher) {
	s.pusher = p
}

// CreateNotification создаёт новое уведомление и пушит его в открытые
// соединения пользователя.
func (s *NotificationService) CreateNotification(ctx context.Context, accountID uuid.UUID, event string, data interface{}) (*models.Notification, error) {
	payload := map[string]interface{}{
		"event": event,
		"data":  data,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notification service: marshal payload %w", err)
	}

	notification := &models.Notification{
		AccountID: accountID,
		Payload:   payloadBytes,
		IsRead:    false,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		s.pusher.Push(accountID, payloadBytes)
	}

	return notification, nil
}

// Notify создаёт уведомление, не прерывая вызывающую операцию при ошибке.
func (s *NotificationService) Notify(ctx context.Context, accountID uuid.UUID, event string, data map[string]interface{}) {
	if _, err := s.CreateNotification(ctx, accountID, event, data); err != nil && logger.Log != nil {
		logger.Log.WithError(err).WithField("event", event).Warn("не удалось создать уведомление")
	}
}

// GetNotification возвращает уведомление по идентификатору.
func (s *NotificationService) GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotificationErr(err)
	}
	return notification, nil
}

// ListNotifications возвращает список уведомлений пользователя.
func (s *NotificationService) ListNotifications(ctx context.Context, accountID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(ctx, accountID, limit, offset, unreadOnly)
}

// MarkAsRead отмечает уведомление как прочитанное.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID, accountID uuid.UUID) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapNotificationErr(err)
	}

	if notification.AccountID != accountID {
		return apperror.ErrForbidden
	}

	return mapNotificationErr(s.repo.MarkAsRead(ctx, id))
}

// MarkAllAsRead отмечает все уведомления пользователя как прочитанные.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, accountID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, accountID)
}

// DeleteNotification удаляет уведомление.
func (s *NotificationService) DeleteNotification(ctx context.Context, id uuid.UUID, accountID uuid.UUID) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapNotificationErr(err)
	}

	if notification.AccountID != accountID {
		return apperror.ErrForbidden
	}

	return mapNotificationErr(s.repo.Delete(ctx, id))
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, accountID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, accountID)
}

// mapNotificationErr переводит ошибки репозитория в ошибки приложения.
func mapNotificationErr(err error) error {
	if errors.Is(err, repository.ErrNotificationNotFound) {
		return apperror.New(apperror.ErrCodeNotFound, "уведомление не найдено")
	}
	return err
}
