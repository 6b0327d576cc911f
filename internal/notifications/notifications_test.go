package notifications

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/rocketshoes/pkg/db/models"
	"github.com/angelmondragon/rocketshoes/pkg/enums"
	"github.com/angelmondragon/rocketshoes/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMessagesFor(t *testing.T) {
	tests := []struct {
		lang string
		kind enums.NotificationKind
		want string
	}{
		{lang: "", kind: enums.NotificationKindAddFailed, want: "Failed to add product"},
		{lang: "EN", kind: enums.NotificationKindStockExceeded, want: "Requested quantity is out of stock"},
		{lang: "pt-BR", kind: enums.NotificationKindStockExceeded, want: "Quantidade solicitada fora de estoque"},
		{lang: "pt_br", kind: enums.NotificationKindRemoveFailed, want: "Erro na remoção do produto"},
		{lang: "pt", kind: enums.NotificationKindUpdateFailed, want: "Erro na alteração de quantidade do produto"},
	}
	for _, tt := range tests {
		msgs, err := MessagesFor(tt.lang)
		if err != nil {
			t.Fatalf("MessagesFor(%q) returned error: %v", tt.lang, err)
		}
		if got := msgs.Text(tt.kind); got != tt.want {
			t.Fatalf("MessagesFor(%q).Text(%s) = %q, want %q", tt.lang, tt.kind, got, tt.want)
		}
	}

	if _, err := MessagesFor("fr"); err == nil {
		t.Fatalf("expected unsupported language to fail")
	}
}

func TestMessagesCoverEveryKind(t *testing.T) {
	kinds := []enums.NotificationKind{
		enums.NotificationKindStockExceeded,
		enums.NotificationKindAddFailed,
		enums.NotificationKindRemoveFailed,
		enums.NotificationKindUpdateFailed,
	}
	for _, catalog := range []Messages{english, portuguese} {
		for _, kind := range kinds {
			if _, ok := catalog[kind]; !ok {
				t.Fatalf("missing text for %s", kind)
			}
		}
	}
	if got := english.Text("other"); got != "other" {
		t.Fatalf("unknown kind should fall back to its name, got %q", got)
	}
}

func TestFanoutDeliversToEverySink(t *testing.T) {
	var got []string
	record := func(name string) Sink {
		return SinkFunc(func(_ context.Context, n Notification) {
			got = append(got, name+":"+n.Message)
		})
	}

	fanout := Fanout{record("a"), nil, record("b")}
	fanout.Notify(context.Background(), NewError(enums.NotificationKindAddFailed, "Failed to add product", 3))

	if len(got) != 2 || got[0] != "a:Failed to add product" || got[1] != "b:Failed to add product" {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestNewErrorDefaults(t *testing.T) {
	n := NewError(enums.NotificationKindStockExceeded, "out", 7)
	if n.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if n.Severity != enums.SeverityError {
		t.Fatalf("expected error severity, got %s", n.Severity)
	}
	if n.ProductID != 7 || n.CreatedAt.IsZero() {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestWriterSink(t *testing.T) {
	buf := &bytes.Buffer{}
	NewWriterSink(buf).Notify(context.Background(), NewError(enums.NotificationKindStockExceeded, "Requested quantity is out of stock", 1))
	if buf.String() != "error: Requested quantity is out of stock\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestLogSink(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	NewLogSink(logg).Notify(context.Background(), NewError(enums.NotificationKindRemoveFailed, "Failed to remove product", 9))

	for _, want := range []string{`"kind":"remove_failed"`, `"product_id":9`, `"message":"Failed to remove product"`} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("expected %s in entry=%s", want, buf.String())
		}
	}
}

func setupNotificationsDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))
	return db
}

func TestRepositorySinkPersistsAndLists(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupNotificationsDB(t))
	sink, err := NewRepositorySink(repo, nil)
	require.NoError(t, err)

	first := NewError(enums.NotificationKindAddFailed, "Failed to add product", 1)
	first.CreatedAt = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	second := NewError(enums.NotificationKindStockExceeded, "Requested quantity is out of stock", 2)
	second.CreatedAt = first.CreatedAt.Add(time.Minute)

	sink.Notify(ctx, first)
	sink.Notify(ctx, second)

	rows, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	newest := FromModel(rows[0])
	assert.Equal(t, second.ID, newest.ID)
	assert.Equal(t, enums.NotificationKindStockExceeded, newest.Kind)
	assert.Equal(t, int64(2), newest.ProductID)

	rows, err = repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

type failingRepo struct {
	Repository
}

func (failingRepo) Create(context.Context, *models.Notification) error {
	return errors.New("disk full")
}

func TestRepositorySinkLogsWriteFailures(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	sink, err := NewRepositorySink(failingRepo{}, logg)
	require.NoError(t, err)

	sink.Notify(context.Background(), NewError(enums.NotificationKindAddFailed, "Failed to add product", 1))
	assert.Contains(t, buf.String(), "notification.persist_failed")

	_, err = NewRepositorySink(nil, logg)
	assert.Error(t, err)
}
