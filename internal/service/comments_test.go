package service

// Тесты сервисного слоя комментариев (internal/service/comments.go).
//
//  Проверяем:
//  - валидацию входов (пустые id, пустой/слишком длинный текст);
//  - маппинг ошибок storage -> service (NotFound / ParentNotFound / Internal);
//  - нормализацию входных данных (TrimSpace, фолбэк имени автора);
//  - проверку авторства при правке/удалении;
//  - happy-path каждого метода.
//
// Подготовка окружения:
//   # 1) Сгенерировать моки интерфейсов хранилищ:
//   mockgen -source=./internal/storage/storage.go -destination=./mocks/storage.go -package=mocks
//
//   # 2) Запустить тесты:
//   go test ./internal/service -v -race -count=1

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-community-service/internal/config"
	"github.com/pribylovaa/go-community-service/internal/models"
	"github.com/pribylovaa/go-community-service/internal/notify"
	"github.com/pribylovaa/go-community-service/internal/realtime"
	"github.com/pribylovaa/go-community-service/internal/storage"
	"github.com/pribylovaa/go-community-service/mocks"
)

func testConfig() config.Config {
	return config.Config{
		Limits: config.LimitsConfig{
			MaxRenderDepth: 4,
			MaxContentLen:  4000,
		},
		Realtime: config.RealtimeConfig{
			TypingIdle:   3 * time.Second,
			HighlightTTL: 5 * time.Second,
			SendBuffer:   8,
		},
	}
}

// newServiceWithMocks — поднимает сервис с моками хранилищ и локальной шиной.
func newServiceWithMocks(t *testing.T) (*Service, *mocks.MockStorage, *mocks.MockPresence, *gomock.Controller) {
	t.Helper()

	ctrl := gomock.NewController(t)
	ms := mocks.NewMockStorage(ctrl)
	mp := mocks.NewMockPresence(ctrl)

	s := New(ms, mp, nil, realtime.NewHub(), notify.Nop{}, testConfig())
	t.Cleanup(s.Close)

	return s, ms, mp, ctrl
}

// mustComment — быстрый хелпер для сборки комментария.
func mustComment(postID uuid.UUID, parentID, authorName, content string) *models.Comment {
	now := time.Now().UTC()
	return &models.Comment{
		ID:         uuid.New().String(),
		PostID:     postID,
		ParentID:   parentID,
		AuthorID:   uuid.New(),
		AuthorName: authorName,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Валидация: пустой author_id/post_id, пустой после TrimSpace текст, лимит длины.
func TestService_CreateComment_Validation(t *testing.T) {
	s, _, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	// empty author_id
	_, err := s.CreateComment(context.Background(), CreateCommentInput{
		PostID: uuid.New(), AuthorID: uuid.Nil, Content: "x",
	})
	require.ErrorIs(t, err, ErrInvalidArgument)

	// empty post_id
	_, err = s.CreateComment(context.Background(), CreateCommentInput{
		PostID: uuid.Nil, AuthorID: uuid.New(), Content: "x",
	})
	require.ErrorIs(t, err, ErrInvalidArgument)

	// content -> TrimSpace -> пусто
	_, err = s.CreateComment(context.Background(), CreateCommentInput{
		PostID: uuid.New(), AuthorID: uuid.New(), Content: "   ",
	})
	require.ErrorIs(t, err, ErrInvalidArgument)

	// превышение лимита длины
	_, err = s.CreateComment(context.Background(), CreateCommentInput{
		PostID: uuid.New(), AuthorID: uuid.New(),
		Content: strings.Repeat("я", testConfig().Limits.MaxContentLen+1),
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// Happy-path: контент нормализуется, пустое имя заменяется фолбэком,
// отправка снимает typing-отметку автора.
func TestService_CreateComment_OK(t *testing.T) {
	s, ms, mp, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	postID := uuid.New()
	authorID := uuid.New()
	stored := mustComment(postID, "", models.UnknownUserName, "hello")
	stored.AuthorID = authorID

	ms.EXPECT().
		CreateComment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c models.Comment) (*models.Comment, error) {
			require.Equal(t, postID, c.PostID)
			require.Equal(t, authorID, c.AuthorID)
			require.Equal(t, "hello", c.Content)
			require.Equal(t, models.UnknownUserName, c.AuthorName)
			return stored, nil
		})

	// Создание комментария снимает отметку «печатает».
	mp.EXPECT().DeleteTyping(gomock.Any(), postID, authorID).Return(nil)

	got, err := s.CreateComment(context.Background(), CreateCommentInput{
		PostID:   postID,
		AuthorID: authorID,
		// имя из пробелов -> фолбэк
		AuthorName: "   ",
		Content:    "  hello  ",
	})
	require.NoError(t, err)
	require.Equal(t, stored, got)
}

func TestService_CreateComment_ParentNotFound(t *testing.T) {
	s, ms, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().
		CreateComment(gomock.Any(), gomock.Any()).
		Return(nil, storage.ErrParentNotFound)

	_, err := s.CreateComment(context.Background(), CreateCommentInput{
		PostID:   uuid.New(),
		ParentID: "missing",
		AuthorID: uuid.New(),
		Content:  "reply",
	})
	require.ErrorIs(t, err, ErrParentNotFound)
}

func TestService_CreateComment_StorageError(t *testing.T) {
	s, ms, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().
		CreateComment(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("boom"))

	_, err := s.CreateComment(context.Background(), CreateCommentInput{
		PostID: uuid.New(), AuthorID: uuid.New(), Content: "x",
	})
	require.ErrorIs(t, err, ErrInternal)
}

func TestService_EditComment_Validation(t *testing.T) {
	s, _, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	_, err := s.EditComment(context.Background(), EditCommentInput{ID: "  ", EditorID: uuid.New(), Content: "x"})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.EditComment(context.Background(), EditCommentInput{ID: "id", EditorID: uuid.Nil, Content: "x"})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.EditComment(context.Background(), EditCommentInput{ID: "id", EditorID: uuid.New(), Content: "   "})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestService_EditComment_NotFound(t *testing.T) {
	s, ms, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	ms.EXPECT().CommentByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	_, err := s.EditComment(context.Background(), EditCommentInput{ID: "missing", EditorID: uuid.New(), Content: "x"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_EditComment_PermissionDenied(t *testing.T) {
	s, ms, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	current := mustComment(uuid.New(), "", "author", "old")
	ms.EXPECT().CommentByID(gomock.Any(), current.ID).Return(current, nil)

	_, err := s.EditComment(context.Background(), EditCommentInput{
		ID: current.ID, EditorID: uuid.New(), Content: "new",
	})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestService_EditComment_OK(t *testing.T) {
	s, ms, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	current := mustComment(uuid.New(), "", "author", "old")
	updated := *current
	updated.Content = "new"

	ms.EXPECT().CommentByID(gomock.Any(), current.ID).Return(current, nil)
	ms.EXPECT().UpdateContent(gomock.Any(), current.ID, "new").Return(&updated, nil)

	got, err := s.EditComment(context.Background(), EditCommentInput{
		ID: current.ID, EditorID: current.AuthorID, Content: "  new  ",
	})
	require.NoError(t, err)
	require.Equal(t, "new", got.Content)
}

func TestService_DeleteComment_PermissionDenied(t *testing.T) {
	s, ms, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	current := mustComment(uuid.New(), "", "author", "x")
	ms.EXPECT().CommentByID(gomock.Any(), current.ID).Return(current, nil)

	err := s.DeleteComment(context.Background(), current.ID, uuid.New())
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestService_DeleteComment_OK(t *testing.T) {
	s, ms, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	current := mustComment(uuid.New(), "", "author", "x")
	ms.EXPECT().CommentByID(gomock.Any(), current.ID).Return(current, nil)
	ms.EXPECT().DeleteComment(gomock.Any(), current.ID).Return(nil)

	err := s.DeleteComment(context.Background(), current.ID, current.AuthorID)
	require.NoError(t, err)
}

func TestService_CommentByID(t *testing.T) {
	s, ms, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	_, err := s.CommentByID(context.Background(), "   ")
	require.ErrorIs(t, err, ErrInvalidArgument)

	ms.EXPECT().CommentByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)
	_, err = s.CommentByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	want := mustComment(uuid.New(), "", "author", "x")
	ms.EXPECT().CommentByID(gomock.Any(), want.ID).Return(want, nil)
	got, err := s.CommentByID(context.Background(), want.ID)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestService_ListComments(t *testing.T) {
	s, ms, _, ctrl := newServiceWithMocks(t)
	defer ctrl.Finish()

	_, err := s.ListComments(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	postID := uuid.New()
	ms.EXPECT().ListByPost(gomock.Any(), postID).Return(nil, errors.New("boom"))
	_, err = s.ListComments(context.Background(), postID)
	require.ErrorIs(t, err, ErrInternal)

	want := []models.Comment{*mustComment(postID, "", "a", "1"), *mustComment(postID, "", "b", "2")}
	ms.EXPECT().ListByPost(gomock.Any(), postID).Return(want, nil)
	got, err := s.ListComments(context.Background(), postID)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
