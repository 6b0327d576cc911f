package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/angelmondragon/rocketshoes/internal/cart"
	"github.com/angelmondragon/rocketshoes/internal/catalog"
	"github.com/angelmondragon/rocketshoes/internal/notifications"
	"github.com/angelmondragon/rocketshoes/pkg/config"
	"github.com/angelmondragon/rocketshoes/pkg/logger"
	"github.com/angelmondragon/rocketshoes/pkg/metrics"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitNotified = 2
)

const usage = `usage: cart [flags] <command> [args]

commands:
  list                       print the cart
  add <product-id>           add one unit of a product
  remove <product-id>        remove a product
  update <product-id> <n>    set a product's amount
  notifications [limit]      print stored notifications (sql backends)
`

var errUsage = errors.New("invalid usage")

// cartView is what the CLI prints after every command.
type cartView struct {
	Items       cart.Cart       `json:"items"`
	Products    int             `json:"products"`
	TotalAmount int             `json:"total_amount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cart", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	envFile := fs.String("env-file", ".env", "optional dotenv file")
	lang := fs.String("lang", "", "notification language (en, pt-BR); overrides config")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	logg := logger.New(logger.Options{ServiceName: "cart", Output: stderr})
	if err := godotenv.Load(*envFile); err != nil {
		logg.Debug(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		return exitFailure
	}
	logg = logger.New(logger.Options{
		ServiceName: "cart",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      stderr,
	})
	if *lang != "" {
		cfg.Notify.Language = *lang
	}

	cmd, err := parseCommand(fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return exitFailure
	}

	app, err := newApp(ctx, cfg, logg, stderr)
	if err != nil {
		logg.Error(ctx, "failed to start cart", err)
		return exitFailure
	}
	code := app.execute(ctx, cmd, stdout)
	if err := app.close(); err != nil {
		logg.Error(ctx, "failed to release resources", err)
	}
	return code
}

type command struct {
	name      string
	productID int64
	amount    int
	limit     int
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, fmt.Errorf("%w: missing command", errUsage)
	}
	cmd := command{name: args[0]}
	rest := args[1:]

	want := map[string]int{"list": 0, "add": 1, "remove": 1, "update": 2}
	if cmd.name == "notifications" {
		if len(rest) > 1 {
			return command{}, fmt.Errorf("%w: notifications takes at most one argument", errUsage)
		}
		if len(rest) == 1 {
			limit, err := strconv.Atoi(rest[0])
			if err != nil || limit <= 0 {
				return command{}, fmt.Errorf("%w: limit must be a positive integer", errUsage)
			}
			cmd.limit = limit
		}
		return cmd, nil
	}
	n, ok := want[cmd.name]
	if !ok {
		return command{}, fmt.Errorf("%w: unknown command %q", errUsage, cmd.name)
	}
	if len(rest) != n {
		return command{}, fmt.Errorf("%w: %s takes %d argument(s)", errUsage, cmd.name, n)
	}
	if n >= 1 {
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return command{}, fmt.Errorf("%w: product id must be an integer", errUsage)
		}
		cmd.productID = id
	}
	if n == 2 {
		amount, err := strconv.Atoi(rest[1])
		if err != nil {
			return command{}, fmt.Errorf("%w: amount must be an integer", errUsage)
		}
		cmd.amount = amount
	}
	return cmd, nil
}

type app struct {
	cfg      *config.Config
	logg     *logger.Logger
	backend  *backend
	store    *cart.Store
	registry *prometheus.Registry
	repo     notifications.Repository
	notified int
}

func newApp(ctx context.Context, cfg *config.Config, logg *logger.Logger, stderr io.Writer) (*app, error) {
	messages, err := notifications.MessagesFor(cfg.Notify.Language)
	if err != nil {
		return nil, err
	}

	gateway, err := catalog.NewClient(catalog.ClientOptions{
		BaseURL:         cfg.Catalog.BaseURL,
		Timeout:         cfg.Catalog.Timeout,
		BreakerFailures: cfg.Catalog.BreakerFailures,
		BreakerCooldown: cfg.Catalog.BreakerCooldown,
		Logger:          logg,
	})
	if err != nil {
		return nil, err
	}

	be, err := openBackend(ctx, cfg, logg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logg:     logg,
		backend:  be,
		registry: prometheus.NewRegistry(),
	}

	sinks := notifications.Fanout{
		notifications.NewWriterSink(stderr),
		notifications.NewLogSink(logg),
		notifications.SinkFunc(func(context.Context, notifications.Notification) { a.notified++ }),
	}
	if be.dbClient != nil {
		a.repo = notifications.NewRepository(be.dbClient.DB())
		if cfg.Notify.Persist {
			repoSink, err := notifications.NewRepositorySink(a.repo, logg)
			if err != nil {
				_ = a.close()
				return nil, err
			}
			sinks = append(sinks, repoSink)
		}
	} else if cfg.Notify.Persist {
		logg.Warn(ctx, "notification history needs a sql storage backend; not persisting")
	}

	store, err := cart.NewStore(cart.StoreParams{
		Storage:  be.storage,
		Gateway:  gateway,
		Sink:     sinks,
		Messages: messages,
		Key:      cfg.Storage.CartKey,
		Metrics:  metrics.NewCartMetrics(a.registry),
		Logger:   logg,
	})
	if err != nil {
		_ = a.close()
		return nil, err
	}
	a.store = store
	return a, nil
}

func (a *app) execute(ctx context.Context, cmd command, stdout io.Writer) int {
	if cmd.name == "notifications" {
		return a.printNotifications(ctx, cmd.limit, stdout)
	}

	a.store.Initialize(ctx)
	switch cmd.name {
	case "add":
		a.store.AddProduct(ctx, cmd.productID)
	case "remove":
		a.store.RemoveProduct(ctx, cmd.productID)
	case "update":
		a.store.UpdateProductAmount(ctx, cart.UpdateAmountInput{ProductID: cmd.productID, Amount: cmd.amount})
	}

	if err := printCart(stdout, a.store.Cart()); err != nil {
		a.logg.Error(ctx, "failed to print cart", err)
		return exitFailure
	}
	if path := a.cfg.App.MetricsTextfile; path != "" {
		if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
			a.logg.Error(a.logg.WithField(ctx, "path", path), "failed to write metrics textfile", err)
		}
	}
	if a.notified > 0 {
		return exitNotified
	}
	return exitOK
}

func (a *app) printNotifications(ctx context.Context, limit int, stdout io.Writer) int {
	if a.repo == nil {
		a.logg.Error(ctx, "notification history unavailable", fmt.Errorf("storage backend %q has no database", a.cfg.Storage.Backend))
		return exitFailure
	}
	rows, err := a.repo.ListRecent(ctx, limit)
	if err != nil {
		a.logg.Error(ctx, "failed to list notifications", err)
		return exitFailure
	}
	out := make([]notifications.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, notifications.FromModel(row))
	}
	if err := writeJSON(stdout, out); err != nil {
		a.logg.Error(ctx, "failed to print notifications", err)
		return exitFailure
	}
	return exitOK
}

func (a *app) close() error {
	var err error
	if a.backend == nil {
		return nil
	}
	for _, c := range a.backend.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

func printCart(w io.Writer, c cart.Cart) error {
	if c == nil {
		c = cart.Cart{}
	}
	return writeJSON(w, cartView{
		Items:       c,
		Products:    len(c),
		TotalAmount: c.TotalAmount(),
		Subtotal:    c.Subtotal(),
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
