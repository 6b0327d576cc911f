package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogProduct is the listing served by the catalog API.
type CatalogProduct struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement:false"`
	Title     string          `gorm:"column:title;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Image     string          `gorm:"column:image;not null;default:''"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CatalogProduct) TableName() string { return "catalog_products" }

// CatalogStock tracks how many units of a product are available.
type CatalogStock struct {
	ProductID int64     `gorm:"column:product_id;primaryKey;autoIncrement:false"`
	Amount    int       `gorm:"column:amount;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CatalogStock) TableName() string { return "catalog_stock" }
