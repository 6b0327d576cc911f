package notifications

import (
	"context"

	"github.com/angelmondragon/rocketshoes/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rocketshoes/pkg/errors"
	"github.com/angelmondragon/rocketshoes/pkg/logger"
	"gorm.io/gorm"
)

const defaultListLimit = 20

// Repository exposes persistence helpers for notifications.
type Repository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListRecent(ctx context.Context, limit int) ([]models.Notification, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// ListRecent returns the newest notifications first.
func (r *repositoryImpl) ListRecent(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RepositorySink keeps a history of notifications in the database. Write failures
// are logged and otherwise dropped.
type RepositorySink struct {
	repo Repository
	logg *logger.Logger
}

func NewRepositorySink(repo Repository, logg *logger.Logger) (*RepositorySink, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &RepositorySink{repo: repo, logg: logg}, nil
}

func (s *RepositorySink) Notify(ctx context.Context, n Notification) {
	row := &models.Notification{
		ID:        n.ID,
		Kind:      n.Kind,
		Severity:  n.Severity,
		Message:   n.Message,
		ProductID: n.ProductID,
		CreatedAt: n.CreatedAt,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "notification_id", n.ID.String()), "notification.persist_failed", err)
	}
}

// FromModel converts a stored row back into a Notification.
func FromModel(row models.Notification) Notification {
	return Notification{
		ID:        row.ID,
		Severity:  row.Severity,
		Kind:      row.Kind,
		Message:   row.Message,
		ProductID: row.ProductID,
		CreatedAt: row.CreatedAt,
	}
}
