package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/rocketshoes/internal/catalog"
	"github.com/angelmondragon/rocketshoes/internal/notifications"
	"github.com/angelmondragon/rocketshoes/internal/storage"
	"github.com/angelmondragon/rocketshoes/pkg/enums"
	"github.com/angelmondragon/rocketshoes/pkg/logger"
	"github.com/angelmondragon/rocketshoes/pkg/metrics"
	"github.com/google/uuid"
)

const (
	opInitialize   = "initialize"
	opAddProduct   = "add_product"
	opRemove       = "remove_product"
	opUpdateAmount = "update_product_amount"

	callGetStock   = "get_stock"
	callGetProduct = "get_product"
)

// Gateway is the read-only view of the catalog the cart validates against.
// Results are never cached; stock changes outside the cart.
type Gateway interface {
	GetStock(ctx context.Context, productID int64) (*catalog.Stock, error)
	GetProduct(ctx context.Context, productID int64) (*catalog.Product, error)
}

// StoreParams wires a Store.
type StoreParams struct {
	Storage  storage.Storage
	Gateway  Gateway
	Sink     notifications.Sink
	Messages notifications.Messages
	Key      string
	Metrics  *metrics.CartMetrics
	Logger   *logger.Logger
}

// UpdateAmountInput asks for a line item's amount to be set.
type UpdateAmountInput struct {
	ProductID int64
	Amount    int
}

// Store owns the cart for a single shopper session. Operations never return
// errors: refusals and failures go to the notification sink and leave the cart
// as it was. A Store is not safe for concurrent mutation.
type Store struct {
	storage  storage.Storage
	gateway  Gateway
	sink     notifications.Sink
	messages notifications.Messages
	key      string
	metrics  *metrics.CartMetrics
	logg     *logger.Logger

	cart Cart
}

// NewStore validates the dependencies and returns an empty store. Call Initialize
// to hydrate it from storage.
func NewStore(params StoreParams) (*Store, error) {
	if params.Storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("stock gateway required")
	}
	if params.Sink == nil {
		return nil, fmt.Errorf("notification sink required")
	}
	if params.Key == "" {
		return nil, fmt.Errorf("cart storage key required")
	}
	messages := params.Messages
	if messages == nil {
		var err error
		if messages, err = notifications.MessagesFor(notifications.LanguageEnglish); err != nil {
			return nil, err
		}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{
		storage:  params.Storage,
		gateway:  params.Gateway,
		sink:     params.Sink,
		messages: messages,
		key:      params.Key,
		metrics:  params.Metrics,
		logg:     logg,
		cart:     Cart{},
	}, nil
}

// Initialize loads the persisted cart. A missing, unreadable or malformed value
// yields an empty cart and is never reported to the shopper.
func (s *Store) Initialize(ctx context.Context) Cart {
	ctx = s.begin(ctx, opInitialize, 0)

	raw, err := s.storage.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.cart = Cart{}
		s.logg.Debug(ctx, "cart.restore.empty")
		return s.Cart()
	case err != nil:
		s.cart = Cart{}
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.restore.unreadable")
		return s.Cart()
	}

	restored, err := Decode(raw)
	if err != nil {
		s.cart = Cart{}
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.restore.malformed")
		return s.Cart()
	}
	s.cart = restored
	s.logg.Debug(s.logg.WithField(ctx, "items", len(restored)), "cart.restore.ok")
	return s.Cart()
}

// Cart returns a copy of the current line items.
func (s *Store) Cart() Cart {
	return s.cart.clone()
}

// AddProduct puts one more unit of the product in the cart. An item already in
// the cart is only incremented while below the current stock; a new item is
// added with amount 1.
func (s *Store) AddProduct(ctx context.Context, productID int64) {
	ctx = s.begin(ctx, opAddProduct, productID)
	defer s.recoverInto(ctx, opAddProduct, enums.NotificationKindAddFailed, productID)

	next := s.cart.clone()
	if idx := next.index(productID); idx >= 0 {
		stock, err := s.fetchStock(ctx, productID)
		if err != nil {
			s.fail(ctx, opAddProduct, enums.NotificationKindAddFailed, productID, err)
			return
		}
		if next[idx].Amount >= stock.Amount {
			s.reject(ctx, opAddProduct, productID, next[idx].Amount, stock.Amount)
			return
		}
		next[idx].Amount++
		s.commit(ctx, opAddProduct, next, metrics.ResultCommitted)
		return
	}

	product, err := s.fetchProduct(ctx, productID)
	if err != nil {
		s.fail(ctx, opAddProduct, enums.NotificationKindAddFailed, productID, err)
		return
	}
	next = append(next, LineItem{
		ID:     productID,
		Title:  product.Title,
		Price:  product.Price,
		Image:  product.Image,
		Amount: 1,
	})
	s.commit(ctx, opAddProduct, next, metrics.ResultCommitted)
}

// RemoveProduct drops the product's line item. Removing an absent product still
// commits the unchanged cart.
func (s *Store) RemoveProduct(ctx context.Context, productID int64) {
	ctx = s.begin(ctx, opRemove, productID)
	defer s.recoverInto(ctx, opRemove, enums.NotificationKindRemoveFailed, productID)

	next := make(Cart, 0, len(s.cart))
	for _, item := range s.cart {
		if item.ID != productID {
			next = append(next, item)
		}
	}
	s.commit(ctx, opRemove, next, metrics.ResultCommitted)
}

// UpdateProductAmount sets a line item's amount. Targets of 1 or less are
// ignored. The stock check refuses only when the item is already at or above
// stock and the target grows it; a target above stock is accepted while the
// current amount is still below stock.
func (s *Store) UpdateProductAmount(ctx context.Context, input UpdateAmountInput) {
	ctx = s.begin(ctx, opUpdateAmount, input.ProductID)
	defer s.recoverInto(ctx, opUpdateAmount, enums.NotificationKindUpdateFailed, input.ProductID)

	if input.Amount <= 1 {
		s.metrics.IncOperation(opUpdateAmount, metrics.ResultSkipped)
		s.logg.Debug(s.logg.WithField(ctx, "amount", input.Amount), "cart.update.skipped")
		return
	}

	stock, err := s.fetchStock(ctx, input.ProductID)
	if err != nil {
		s.fail(ctx, opUpdateAmount, enums.NotificationKindUpdateFailed, input.ProductID, err)
		return
	}

	result := metrics.ResultCommitted
	next := s.cart.clone()
	for i := range next {
		if next[i].ID != input.ProductID {
			continue
		}
		if next[i].Amount >= stock.Amount && input.Amount > next[i].Amount {
			s.notifyStockExceeded(ctx, input.ProductID, next[i].Amount, stock.Amount)
			result = metrics.ResultRejected
			continue
		}
		next[i].Amount = input.Amount
	}
	s.commit(ctx, opUpdateAmount, next, result)
}

func (s *Store) begin(ctx context.Context, operation string, productID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = s.logg.WithOperation(ctx, operation, uuid.NewString())
	if productID != 0 {
		ctx = s.logg.WithProductID(ctx, productID)
	}
	return ctx
}

func (s *Store) fetchStock(ctx context.Context, productID int64) (*catalog.Stock, error) {
	start := time.Now()
	stock, err := s.gateway.GetStock(ctx, productID)
	s.metrics.ObserveGateway(callGetStock, time.Since(start), err)
	if err == nil && stock == nil {
		err = fmt.Errorf("stock gateway returned no stock for %d", productID)
	}
	return stock, err
}

func (s *Store) fetchProduct(ctx context.Context, productID int64) (*catalog.Product, error) {
	start := time.Now()
	product, err := s.gateway.GetProduct(ctx, productID)
	s.metrics.ObserveGateway(callGetProduct, time.Since(start), err)
	if err == nil && product == nil {
		err = fmt.Errorf("stock gateway returned no product for %d", productID)
	}
	return product, err
}

// commit writes the cart through and then replaces it. A failed write is logged
// and counted; the in-memory cart keeps the new value. The cart is untouched
// when the write panics.
func (s *Store) commit(ctx context.Context, operation string, next Cart, result string) {
	raw, err := Encode(next)
	if err == nil {
		err = s.storage.Set(ctx, s.key, raw)
	}
	s.cart = next
	s.metrics.IncOperation(operation, result)
	if err != nil {
		s.metrics.IncPersistError()
		s.logg.Error(ctx, "cart.persist_failed", err)
		return
	}
	s.logg.Info(s.logg.WithField(ctx, "items", len(next)), "cart.commit")
}

func (s *Store) reject(ctx context.Context, operation string, productID int64, current, available int) {
	s.metrics.IncOperation(operation, metrics.ResultRejected)
	s.notifyStockExceeded(ctx, productID, current, available)
}

func (s *Store) notifyStockExceeded(ctx context.Context, productID int64, current, available int) {
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"amount": current,
		"stock":  available,
	}), "cart.stock_exceeded")
	s.notify(ctx, enums.NotificationKindStockExceeded, productID)
}

func (s *Store) fail(ctx context.Context, operation string, kind enums.NotificationKind, productID int64, err error) {
	s.metrics.IncOperation(operation, metrics.ResultFailed)
	s.logg.Error(ctx, "cart.gateway_failed", err)
	s.notify(ctx, kind, productID)
}

func (s *Store) notify(ctx context.Context, kind enums.NotificationKind, productID int64) {
	s.metrics.IncNotification(kind.String())
	defer func() {
		if r := recover(); r != nil {
			s.logg.Error(ctx, "notification.delivery_failed", fmt.Errorf("panic: %v", r))
		}
	}()
	s.sink.Notify(ctx, notifications.NewError(kind, s.messages.Text(kind), productID))
}

func (s *Store) recoverInto(ctx context.Context, operation string, kind enums.NotificationKind, productID int64) {
	r := recover()
	if r == nil {
		return
	}
	s.fail(ctx, operation, kind, productID, fmt.Errorf("panic: %v", r))
}
