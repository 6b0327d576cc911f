package catalog

import (
	"context"
	"fmt"

	"github.com/angelmondragon/rocketshoes/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rocketshoes/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service answers catalog reads from the database. It satisfies the same
// GetStock/GetProduct contract as Client so the cart can run against either.
type Service struct {
	repo *Repository
	tx   txRunner
}

// NewService wires the catalog service.
func NewService(repo *Repository, tx txRunner) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &Service{repo: repo, tx: tx}, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, productFromModel(row))
	}
	return out, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	row, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	product := productFromModel(*row)
	return &product, nil
}

func (s *Service) GetStock(ctx context.Context, productID int64) (*Stock, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	row, err := s.repo.GetStock(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
	}
	return &Stock{ID: row.ProductID, Amount: row.Amount}, nil
}

// ApplySeed writes a validated seed document into the catalog tables.
func (s *Service) ApplySeed(ctx context.Context, seed *Seed) error {
	if seed == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seed required")
	}
	products := make([]models.CatalogProduct, 0, len(seed.Products))
	for _, p := range seed.Products {
		products = append(products, models.CatalogProduct{ID: p.ID, Title: p.Title, Price: p.Price, Image: p.Image})
	}
	stock := make([]models.CatalogStock, 0, len(seed.Stock))
	for _, st := range seed.Stock {
		stock = append(stock, models.CatalogStock{ProductID: st.ID, Amount: st.Amount})
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpsertProducts(ctx, products); err != nil {
			return err
		}
		return repo.UpsertStock(ctx, stock)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed catalog")
	}
	return nil
}

func productFromModel(row models.CatalogProduct) Product {
	return Product{ID: row.ID, Title: row.Title, Price: row.Price, Image: row.Image}
}
