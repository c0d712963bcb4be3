package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Changwoon-overview/Socialtalk/internal/domain/notification"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ notification.DeliveryLog = (*DeliveryLogStore)(nil)

// deliveryLogModel maps the sms_connect_logs table.
type deliveryLogModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	SentAt       time.Time `gorm:"not null;index"`
	SubjectID    int64     `gorm:"not null;index"`
	EventKind    string    `gorm:"size:40"`
	StatusKey    string    `gorm:"size:100"`
	Recipient    string    `gorm:"size:100;not null"`
	Type         string    `gorm:"size:20;not null"`
	Status       string    `gorm:"size:20;not null"`
	Message      string    `gorm:"type:text"`
	TemplateCode string    `gorm:"size:100"`
	Response     string    `gorm:"type:text"`
}

func (deliveryLogModel) TableName() string { return "sms_connect_logs" }

// DeliveryLogStore is an append-only delivery log backed by Postgres via GORM.
type DeliveryLogStore struct {
	db *gorm.DB
}

// Open connects to Postgres with the given DSN.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return db, nil
}

// NewDeliveryLogStore wraps db. The table must already exist.
func NewDeliveryLogStore(db *gorm.DB) *DeliveryLogStore {
	return &DeliveryLogStore{db: db}
}

// Append inserts one entry and sets its ID.
func (s *DeliveryLogStore) Append(ctx context.Context, entry *notification.DeliveryLogEntry) error {
	m := deliveryLogModel{
		SentAt:       entry.SentAt.UTC(),
		SubjectID:    entry.SubjectID,
		EventKind:    string(entry.EventKind),
		StatusKey:    entry.StatusKey,
		Recipient:    entry.Recipient,
		Type:         string(entry.ChannelType),
		Status:       string(entry.Status),
		Message:      entry.Message,
		TemplateCode: entry.TemplateCode,
		Response:     entry.RawResponse,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("inserting delivery log: %w", err)
	}
	entry.ID = m.ID
	return nil
}

// List retrieves entries newest first.
func (s *DeliveryLogStore) List(ctx context.Context, filter notification.LogFilter) ([]*notification.DeliveryLogEntry, int, error) {
	filter.Normalize()

	var total int64
	if err := s.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting delivery logs: %w", err)
	}

	var rows []deliveryLogModel
	err := s.filtered(ctx, filter).
		Order("sent_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing delivery logs: %w", err)
	}

	entries := make([]*notification.DeliveryLogEntry, len(rows))
	for i, m := range rows {
		entries[i] = &notification.DeliveryLogEntry{
			ID:           m.ID,
			SentAt:       m.SentAt,
			SubjectID:    m.SubjectID,
			EventKind:    notification.EventKind(m.EventKind),
			StatusKey:    m.StatusKey,
			Recipient:    m.Recipient,
			ChannelType:  notification.ChannelType(m.Type),
			Status:       notification.DeliveryStatus(m.Status),
			Message:      m.Message,
			TemplateCode: m.TemplateCode,
			RawResponse:  m.Response,
		}
	}
	return entries, int(total), nil
}

// filtered starts a fresh query with the filter's WHERE conditions applied.
func (s *DeliveryLogStore) filtered(ctx context.Context, filter notification.LogFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&deliveryLogModel{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Recipient != "" {
		q = q.Where("recipient = ?", filter.Recipient)
	}
	if filter.ChannelType != "" {
		q = q.Where("type = ?", filter.ChannelType)
	}
	if filter.SubjectID != 0 {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	return q
}
