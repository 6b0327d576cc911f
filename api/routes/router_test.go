package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/rocketshoes/internal/catalog"
	"github.com/angelmondragon/rocketshoes/pkg/config"
	pkgdb "github.com/angelmondragon/rocketshoes/pkg/db"
	"github.com/angelmondragon/rocketshoes/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rocketshoes/pkg/errors"
	"github.com/angelmondragon/rocketshoes/pkg/logger"
	"github.com/angelmondragon/rocketshoes/pkg/metrics"
	"github.com/angelmondragon/rocketshoes/pkg/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const routerSeed = `{
  "products": [
    {"id": 1, "title": "Tênis de Caminhada Leve Confortável", "price": 179.9, "image": "https://example.com/1.jpg"},
    {"id": 2, "title": "Tênis VR Caminhada Confortável Detalhes Couro Masculino", "price": 139.9, "image": "https://example.com/2.jpg"}
  ],
  "stock": [
    {"id": 1, "amount": 3},
    {"id": 2, "amount": 5}
  ]
}`

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: config.AppEnvDev},
		Catalog: config.CatalogConfig{CORSOrigins: []string{"http://localhost:3000"}},
	}
}

func seededService(t *testing.T) *catalog.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.CatalogProduct{}, &models.CatalogStock{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := catalog.NewService(catalog.NewRepository(db), pkgdb.NewFromConn(db, "sqlite"))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	seed, err := catalog.LoadSeed(strings.NewReader(routerSeed))
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if err := svc.ApplySeed(context.Background(), seed); err != nil {
		t.Fatalf("apply seed: %v", err)
	}
	return svc
}

func newTestRouter(t *testing.T, pinger stubPinger) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics.NewCartMetrics(reg).IncOperation("add_product", metrics.ResultCommitted)
	return NewRouter(testConfig(), logger.Nop(), pinger, seededService(t), reg), reg
}

func doRequest(t *testing.T, h http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCatalogRoutes(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	rec := doRequest(t, router, http.MethodGet, "/stock/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var stock map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&stock); err != nil {
		t.Fatalf("decode stock: %v", err)
	}
	if stock["id"] != float64(1) || stock["amount"] != float64(3) {
		t.Fatalf("unexpected stock body %v", stock)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}

	rec = doRequest(t, router, http.MethodGet, "/products/2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var product map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if product["title"] != "Tênis VR Caminhada Confortável Detalhes Couro Masculino" {
		t.Fatalf("unexpected product body %v", product)
	}

	rec = doRequest(t, router, http.MethodGet, "/products", nil)
	var list []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected two products, got %d", len(list))
	}
}

func TestCatalogRouteErrors(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	tests := []struct {
		path   string
		status int
		code   pkgerrors.Code
	}{
		{path: "/stock/99", status: http.StatusNotFound, code: pkgerrors.CodeNotFound},
		{path: "/products/99", status: http.StatusNotFound, code: pkgerrors.CodeNotFound},
		{path: "/stock/abc", status: http.StatusBadRequest, code: pkgerrors.CodeValidation},
		{path: "/products/0", status: http.StatusBadRequest, code: pkgerrors.CodeValidation},
		{path: "/orders", status: http.StatusNotFound, code: pkgerrors.CodeNotFound},
	}
	for _, tt := range tests {
		rec := doRequest(t, router, http.MethodGet, tt.path, nil)
		if rec.Code != tt.status {
			t.Fatalf("%s: expected %d, got %d", tt.path, tt.status, rec.Code)
		}
		var body types.ErrorEnvelope
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", tt.path, err)
		}
		if body.Error.Code != string(tt.code) {
			t.Fatalf("%s: expected code %s, got %s", tt.path, tt.code, body.Error.Code)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	rec := doRequest(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", rec.Code)
	}
	if rec.Header().Get("X-RocketShoes-Env") != config.AppEnvDev {
		t.Fatalf("expected env header")
	}

	rec = doRequest(t, router, http.MethodGet, "/metrics", nil)
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `cart_operations_total{operation="add_product",result="committed"} 1`) {
		t.Fatalf("expected cart metrics in exposition, got %s", body)
	}

	unhealthy, _ := newTestRouter(t, stubPinger{err: errors.New("db down")})
	rec = doRequest(t, unhealthy, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when db is down, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	rec := doRequest(t, router, http.MethodOptions, "/stock/1", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": http.MethodGet,
	})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected storefront origin allowed, got %q", got)
	}

	rec = doRequest(t, router, http.MethodGet, "/stock/1", map[string]string{"Origin": "https://evil.example"})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allowed origin %q", got)
	}
}

func TestStockGatewayAgainstRouter(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	client, err := catalog.NewClient(catalog.ClientOptions{BaseURL: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	stock, err := client.GetStock(context.Background(), 2)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if stock.Amount != 5 {
		t.Fatalf("expected amount 5, got %d", stock.Amount)
	}

	product, err := client.GetProduct(context.Background(), 1)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Price.String() != "179.9" {
		t.Fatalf("unexpected price %s", product.Price)
	}

	if _, err := client.GetStock(context.Background(), 99); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
