package service

// Тесты typing-присутствия (internal/service/typing.go).
//
//  Проверяем:
//  - best-effort контракт Start/Stop (ошибки не поднимаются наружу);
//  - автоснятие отметки по окну простоя и debounce при повторных вызовах;
//  - идемпотентный StopTyping с отменой таймера;
//  - ListTyping (валидация + передача из presence).

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-community-service/internal/models"
	"github.com/pribylovaa/go-community-service/internal/notify"
	"github.com/pribylovaa/go-community-service/internal/realtime"
	"github.com/pribylovaa/go-community-service/mocks"
)

// newTypingService — сервис с коротким окном простоя для таймерных тестов.
func newTypingService(t *testing.T, idle time.Duration) (*Service, *mocks.MockPresence, *gomock.Controller) {
	t.Helper()

	cfg := testConfig()
	cfg.Realtime.TypingIdle = idle

	ctrl := gomock.NewController(t)
	mp := mocks.NewMockPresence(ctrl)

	s := New(mocks.NewMockStorage(ctrl), mp, nil, realtime.NewHub(), notify.Nop{}, cfg)
	t.Cleanup(s.Close)

	return s, mp, ctrl
}

// Пустые идентификаторы игнорируются без обращения к presence.
func TestService_StartTyping_Validation(t *testing.T) {
	s, _, ctrl := newTypingService(t, time.Second)
	defer ctrl.Finish()

	s.StartTyping(context.Background(), uuid.Nil, uuid.New(), "user")
	s.StartTyping(context.Background(), uuid.New(), uuid.Nil, "user")
	s.StopTyping(context.Background(), uuid.Nil, uuid.New())
}

func TestService_StartTyping_UpsertsWithIdleTTL(t *testing.T) {
	const idle = time.Second

	s, mp, ctrl := newTypingService(t, idle)
	defer ctrl.Finish()

	postID := uuid.New()
	userID := uuid.New()

	mp.EXPECT().
		UpsertTyping(gomock.Any(), gomock.Any(), idle).
		DoAndReturn(func(_ context.Context, p models.TypingPresence, _ time.Duration) error {
			require.Equal(t, postID, p.PostID)
			require.Equal(t, userID, p.UserID)
			require.Equal(t, "alice", p.DisplayName)
			require.False(t, p.UpdatedAt.IsZero())
			return nil
		})

	s.StartTyping(context.Background(), postID, userID, "alice")

	// Явный Stop снимает отметку и таймер.
	mp.EXPECT().DeleteTyping(gomock.Any(), postID, userID).Return(nil)
	s.StopTyping(context.Background(), postID, userID)
}

// Пустое имя заменяется фолбэком.
func TestService_StartTyping_NameFallback(t *testing.T) {
	s, mp, ctrl := newTypingService(t, time.Second)
	defer ctrl.Finish()

	postID := uuid.New()
	userID := uuid.New()

	mp.EXPECT().
		UpsertTyping(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p models.TypingPresence, _ time.Duration) error {
			require.Equal(t, models.UnknownUserName, p.DisplayName)
			return nil
		})

	s.StartTyping(context.Background(), postID, userID, "")

	mp.EXPECT().DeleteTyping(gomock.Any(), postID, userID).Return(nil)
	s.StopTyping(context.Background(), postID, userID)
}

// Отметка снимается сама после окна простоя (клиент «замолчал»).
func TestService_StartTyping_ExpiresAfterIdle(t *testing.T) {
	const idle = 50 * time.Millisecond

	s, mp, ctrl := newTypingService(t, idle)
	defer ctrl.Finish()

	postID := uuid.New()
	userID := uuid.New()

	mp.EXPECT().UpsertTyping(gomock.Any(), gomock.Any(), idle).Return(nil)

	expired := make(chan struct{})
	mp.EXPECT().
		DeleteTyping(gomock.Any(), postID, userID).
		DoAndReturn(func(context.Context, uuid.UUID, uuid.UUID) error {
			close(expired)
			return nil
		})

	s.StartTyping(context.Background(), postID, userID, "alice")

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("typing mark was not expired")
	}
}

// Повторный StartTyping до истечения окна перезапускает таймер: снятие
// происходит ровно один раз, после последнего heartbeat.
func TestService_StartTyping_Debounce(t *testing.T) {
	const idle = 80 * time.Millisecond

	s, mp, ctrl := newTypingService(t, idle)
	defer ctrl.Finish()

	postID := uuid.New()
	userID := uuid.New()

	mp.EXPECT().UpsertTyping(gomock.Any(), gomock.Any(), idle).Return(nil).Times(3)

	expired := make(chan struct{})
	mp.EXPECT().
		DeleteTyping(gomock.Any(), postID, userID).
		DoAndReturn(func(context.Context, uuid.UUID, uuid.UUID) error {
			close(expired)
			return nil
		})

	for i := 0; i < 3; i++ {
		s.StartTyping(context.Background(), postID, userID, "alice")
		time.Sleep(idle / 4)
	}

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("typing mark was not expired")
	}
}

// Явный StopTyping отменяет таймер: повторного снятия не происходит.
func TestService_StopTyping_CancelsTimer(t *testing.T) {
	const idle = 50 * time.Millisecond

	s, mp, ctrl := newTypingService(t, idle)
	defer ctrl.Finish()

	postID := uuid.New()
	userID := uuid.New()

	mp.EXPECT().UpsertTyping(gomock.Any(), gomock.Any(), idle).Return(nil)
	// Ровно один Delete — от явного Stop; срабатывание таймера было бы вторым
	// вызовом и завалило бы тест на ctrl.Finish.
	mp.EXPECT().DeleteTyping(gomock.Any(), postID, userID).Return(nil).Times(1)

	s.StartTyping(context.Background(), postID, userID, "alice")
	s.StopTyping(context.Background(), postID, userID)

	time.Sleep(3 * idle)
}

// Сбой записи присутствия не заводит таймер и не поднимается наружу.
func TestService_StartTyping_BestEffort(t *testing.T) {
	const idle = 50 * time.Millisecond

	s, mp, ctrl := newTypingService(t, idle)
	defer ctrl.Finish()

	mp.EXPECT().UpsertTyping(gomock.Any(), gomock.Any(), idle).Return(errors.New("boom"))

	s.StartTyping(context.Background(), uuid.New(), uuid.New(), "alice")

	// Таймер не был заведён: DeleteTyping не ожидается.
	time.Sleep(3 * idle)
}

func TestService_ListTyping(t *testing.T) {
	s, mp, ctrl := newTypingService(t, time.Second)
	defer ctrl.Finish()

	_, err := s.ListTyping(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	postID := uuid.New()
	mp.EXPECT().ListTyping(gomock.Any(), postID).Return(nil, errors.New("boom"))
	_, err = s.ListTyping(context.Background(), postID)
	require.ErrorIs(t, err, ErrInternal)

	want := []models.TypingPresence{{PostID: postID, UserID: uuid.New(), DisplayName: "alice"}}
	mp.EXPECT().ListTyping(gomock.Any(), postID).Return(want, nil)
	got, err := s.ListTyping(context.Background(), postID)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
