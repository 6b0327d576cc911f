package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/rocketshoes/pkg/enums"
)

// Notification keeps a history of the messages shown to the shopper.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:text;primaryKey"`
	Kind      enums.NotificationKind `gorm:"column:kind;not null"`
	Severity  enums.Severity         `gorm:"column:severity;not null"`
	Message   string                 `gorm:"column:message;not null"`
	ProductID int64                  `gorm:"column:product_id;not null;default:0"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string { return "notifications" }
