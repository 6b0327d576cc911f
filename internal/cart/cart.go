// Package cart holds the shopper's cart: the line items they picked, validated
// against live stock and written through to durable storage on every change.
package cart

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one product in the cart. Title, price and image are copied from
// the catalog when the item is first added.
type LineItem struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
	Amount int             `json:"amount"`
}

// Subtotal is price times amount.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Amount)))
}

// Cart is the ordered list of line items, at most one per product id.
type Cart []LineItem

// Find returns the line item for the product, if present.
func (c Cart) Find(productID int64) (LineItem, bool) {
	if idx := c.index(productID); idx >= 0 {
		return c[idx], true
	}
	return LineItem{}, false
}

// Subtotal sums every line item's subtotal.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.Subtotal())
	}
	return total
}

// TotalAmount is the number of units across all line items.
func (c Cart) TotalAmount() int {
	total := 0
	for _, item := range c {
		total += item.Amount
	}
	return total
}

func (c Cart) index(productID int64) int {
	for i, item := range c {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Encode serializes the cart as a JSON array. An empty cart encodes as [].
func Encode(c Cart) (string, error) {
	if c == nil {
		c = Cart{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(raw), nil
}

// Decode parses a persisted cart. Anything that is not a JSON array of line items
// with unique ids and positive amounts is rejected.
func Decode(raw string) (Cart, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return nil, fmt.Errorf("decode cart: empty value")
	}
	var c Cart
	if err := json.Unmarshal([]byte(trimmed), &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	seen := make(map[int64]struct{}, len(c))
	for _, item := range c {
		if item.Amount < 1 {
			return nil, fmt.Errorf("decode cart: product %d has amount %d", item.ID, item.Amount)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("decode cart: product %d listed twice", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	if c == nil {
		c = Cart{}
	}
	return c, nil
}
