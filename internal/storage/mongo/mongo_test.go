package mongo

// Интеграционные тесты хранилища комментариев/реакций поверх MongoDB.
//
// TestMain запускает MongoDB в контейнере один раз на весь пакет тестов
// (только при GO_TEST_INTEGRATION=1; без неё пакет ограничивается юнит-частью).
// Адрес контейнера прокидывается в ENV DATABASE_URL, каждый тест работает
// в собственной БД с уникальным именем.
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/mongo -v -race -count=1

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/go-community-service/internal/config"
	"github.com/pribylovaa/go-community-service/internal/models"
	"github.com/pribylovaa/go-community-service/internal/storage"
)

// testTimeout — общий дедлайн на операции с БД в тестах.
const testTimeout = 10 * time.Second

func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7.0",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
	}

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		os.Exit(1)
	}

	host, err := mongoC.Host(ctx)
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		os.Exit(1)
	}

	_ = os.Setenv("DATABASE_URL", fmt.Sprintf("mongodb://%s:%s", host, port.Port()))

	code := m.Run()

	_ = mongoC.Terminate(context.Background())
	os.Exit(code)
}

// newTestConfig создаёт конфиг с отдельной тестовой БД.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	baseURL := os.Getenv("DATABASE_URL")
	if baseURL == "" {
		baseURL = "mongodb://localhost:27017"
	}

	dbName := "community_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	return &config.Config{
		DB: config.DBConfig{
			URL: strings.TrimSuffix(baseURL, "/") + "/" + dbName,
		},
	}
}

// mustNewMongo подключается к тестовой БД и регистрирует очистку.
func mustNewMongo(t *testing.T) *Mongo {
	t.Helper()

	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("set GO_TEST_INTEGRATION=1 to run mongo integration tests")
	}

	cfg := newTestConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	m, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("cannot connect to MongoDB in container: %v (DATABASE_URL=%s)", err, cfg.DB.URL)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = m.db.Drop(ctx)
		_ = m.Close(ctx)
	})

	return m
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}

// TestDatabaseFromURI — юнит: извлечение имени БД из URI (не требует контейнера).
func TestDatabaseFromURI(t *testing.T) {
	t.Parallel()

	require.Equal(t, "community_x", databaseFromURI("mongodb://localhost:27017/community_x"))
	require.Equal(t, defaultDBName, databaseFromURI("mongodb://localhost:27017"))
	require.Equal(t, defaultDBName, databaseFromURI("mongodb://localhost:27017/"))
}

func TestCreateRootComment(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)

	before := time.Now().UTC().Add(-time.Second)
	out, err := m.CreateComment(ctx, models.Comment{
		PostID:     uuid.New(),
		AuthorID:   uuid.New(),
		AuthorName: "alice",
		Content:    "hello world",
	})
	require.NoError(t, err)

	require.NotEmpty(t, out.ID)
	require.Empty(t, out.ParentID)
	require.Empty(t, out.ReplyToAuthor)
	require.True(t, out.CreatedAt.After(before))
	require.Equal(t, out.CreatedAt, out.UpdatedAt)
}

// Ответ наследует post_id родителя и получает reply-контекст:
// имя автора родителя и превью его текста.
func TestCreateReply_InheritsParentContext(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)

	parent, err := m.CreateComment(ctx, models.Comment{
		PostID:     uuid.New(),
		AuthorID:   uuid.New(),
		AuthorName: "alice",
		Content:    strings.Repeat("long parent content ", 10),
	})
	require.NoError(t, err)

	reply, err := m.CreateComment(ctx, models.Comment{
		// Чужой post_id игнорируется: берётся post_id родителя.
		PostID:     uuid.New(),
		ParentID:   parent.ID,
		AuthorID:   uuid.New(),
		AuthorName: "bob",
		Content:    "reply",
	})
	require.NoError(t, err)

	require.Equal(t, parent.PostID, reply.PostID)
	require.Equal(t, parent.ID, reply.ParentID)
	require.Equal(t, "alice", reply.ReplyToAuthor)
	require.Equal(t, parent.Snippet(), reply.ReplyToSnippet)
	require.LessOrEqual(t, len([]rune(reply.ReplyToSnippet)), models.SnippetLen+1)
}

func TestCreateReply_ParentNotFound(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)

	// Синтаксически валидный, но отсутствующий ObjectID.
	_, err := m.CreateComment(ctx, models.Comment{
		PostID:     uuid.New(),
		ParentID:   "ffffffffffffffffffffffff",
		AuthorID:   uuid.New(),
		AuthorName: "bob",
		Content:    "reply",
	})
	require.ErrorIs(t, err, storage.ErrParentNotFound)

	// Мусорный parent_id трактуется так же.
	_, err = m.CreateComment(ctx, models.Comment{
		PostID:     uuid.New(),
		ParentID:   "not-an-object-id",
		AuthorID:   uuid.New(),
		AuthorName: "bob",
		Content:    "reply",
	})
	require.ErrorIs(t, err, storage.ErrParentNotFound)
}

// UpdateContent меняет только текст и updated_at.
func TestUpdateContent(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)

	created, err := m.CreateComment(ctx, models.Comment{
		PostID:     uuid.New(),
		AuthorID:   uuid.New(),
		AuthorName: "alice",
		Content:    "old",
	})
	require.NoError(t, err)

	updated, err := m.UpdateContent(ctx, created.ID, "new")
	require.NoError(t, err)

	require.Equal(t, "new", updated.Content)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.Equal(t, created.ParentID, updated.ParentID)
	require.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = m.UpdateContent(ctx, "ffffffffffffffffffffffff", "x")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// Удаление жёсткое и не каскадирует: ответ остаётся со старым parent_id.
func TestDeleteComment_NoCascade(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)

	parent, err := m.CreateComment(ctx, models.Comment{
		PostID:     uuid.New(),
		AuthorID:   uuid.New(),
		AuthorName: "alice",
		Content:    "parent",
	})
	require.NoError(t, err)

	reply, err := m.CreateComment(ctx, models.Comment{
		ParentID:   parent.ID,
		AuthorID:   uuid.New(),
		AuthorName: "bob",
		Content:    "reply",
		PostID:     parent.PostID,
	})
	require.NoError(t, err)

	require.NoError(t, m.DeleteComment(ctx, parent.ID))

	_, err = m.CommentByID(ctx, parent.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	orphan, err := m.CommentByID(ctx, reply.ID)
	require.NoError(t, err)
	require.Equal(t, parent.ID, orphan.ParentID)

	// Повторное удаление — NotFound.
	require.ErrorIs(t, m.DeleteComment(ctx, parent.ID), storage.ErrNotFound)
}

// ListByPost отдаёт только комментарии поста в порядке created_at/_id ASC.
func TestListByPost_OrderAndIsolation(t *testing.T) {
	m := mustNewMongo(t)
	ctx := testCtx(t)

	postA := uuid.New()
	postB := uuid.New()

	var want []string
	for i := 0; i < 5; i++ {
		c, err := m.CreateComment(ctx, models.Comment{
			PostID:     postA,
			AuthorID:   uuid.New(),
			AuthorName: "alice",
			Content:    fmt.Sprintf("comment %d", i),
		})
		require.NoError(t, err)
		want = append(want, c.ID)
	}

	_, err := m.CreateComment(ctx, models.Comment{
		PostID:     postB,
		AuthorID:   uuid.New(),
		AuthorName: "bob",
		Content:    "other post",
	})
	require.NoError(t, err)

	items, err := m.ListByPost(ctx, postA)
	require.NoError(t, err)
	require.Len(t, items, 5)

	for i, c := range items {
		require.Equal(t, want[i], c.ID)
		require.Equal(t, postA, c.PostID)
		if i > 0 {
			require.False(t, c.CreatedAt.Before(items[i-1].CreatedAt))
		}
	}
}
