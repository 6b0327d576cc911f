package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	pkgerrors "github.com/angelmondragon/rocketshoes/pkg/errors"
	"github.com/angelmondragon/rocketshoes/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const maxBodyBytes = 1 << 20

var errNegativePrice = errors.New("price must not be negative")

// ClientOptions configures the HTTP stock gateway.
type ClientOptions struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
	Transport       http.RoundTripper
	Logger          *logger.Logger
}

// Client reads stock and product metadata from the catalog API:
// GET {base}/stock/{id} and GET {base}/products/{id}.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	flight  singleflight.Group
	logg    *logger.Logger
}

// NewClient builds a catalog client. Every call goes through a circuit breaker so a
// dead catalog fails fast instead of stalling each cart operation for the full timeout.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("catalog base url required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("catalog base url must be absolute, got %q", opts.BaseURL)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || pkgerrors.IsCode(err, pkgerrors.CodeNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ctx := logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			logg.Warn(ctx, "catalog.breaker.state_change")
		},
	})

	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		breaker: breaker,
		logg:    logg,
	}, nil
}

// GetStock fetches the current stock record for the product.
func (c *Client) GetStock(ctx context.Context, productID int64) (*Stock, error) {
	var stock Stock
	if err := c.getJSON(ctx, "stock", productID, &stock); err != nil {
		return nil, err
	}
	if err := validate.Struct(&stock); err != nil {
		return nil, malformed("stock", err)
	}
	if stock.ID != productID {
		return nil, malformed("stock", fmt.Errorf("asked for %d, got %d", productID, stock.ID))
	}
	return &stock, nil
}

// GetProduct fetches the product metadata.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	var product Product
	if err := c.getJSON(ctx, "products", productID, &product); err != nil {
		return nil, err
	}
	if err := validateProduct(&product); err != nil {
		return nil, malformed("product", err)
	}
	if product.ID != productID {
		return nil, malformed("product", fmt.Errorf("asked for %d, got %d", productID, product.ID))
	}
	return &product, nil
}

func (c *Client) getJSON(ctx context.Context, resource string, id int64, dest any) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(c.baseURL.Path, resource, strconv.FormatInt(id, 10))

	// Concurrent lookups of the same resource share one upstream request.
	key := endpoint.String()
	shared, err, _ := c.flight.Do(key, func() (any, error) {
		return c.breaker.Execute(func() ([]byte, error) {
			return c.do(ctx, key)
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog unavailable")
		}
		return err
	}

	body, _ := shared.([]byte)
	if err := json.Unmarshal(body, dest); err != nil {
		return malformed(resource, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read catalog response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog entry not found").
			WithDetails(map[string]any{"url": endpoint})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("catalog responded %d", resp.StatusCode)).
			WithDetails(map[string]any{"url": endpoint, "status": resp.StatusCode})
	}
	return body, nil
}

func malformed(resource string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed "+resource+" response")
}
