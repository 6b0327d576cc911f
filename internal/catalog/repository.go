package catalog

import (
	"context"
	"errors"

	"github.com/angelmondragon/rocketshoes/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists catalog listings and stock levels.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListProducts returns every listing ordered by id.
func (r *Repository) ListProducts(ctx context.Context) ([]models.CatalogProduct, error) {
	var rows []models.CatalogProduct
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetProduct loads a single listing. Missing rows surface as gorm.ErrRecordNotFound.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*models.CatalogProduct, error) {
	var row models.CatalogProduct
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// GetStock loads the stock row for the product.
func (r *Repository) GetStock(ctx context.Context, productID int64) (*models.CatalogStock, error) {
	var row models.CatalogStock
	if err := r.db.WithContext(ctx).First(&row, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpsertProducts inserts listings or refreshes the existing ones by id.
func (r *Repository) UpsertProducts(ctx context.Context, products []models.CatalogProduct) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "price", "image", "updated_at"}),
	}).Create(&products).Error
}

// UpsertStock sets the stock amount of each product.
func (r *Repository) UpsertStock(ctx context.Context, stock []models.CatalogStock) error {
	if len(stock) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&stock).Error
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
