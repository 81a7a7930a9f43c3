package realtime

// Тесты in-process шины (internal/realtime/hub.go).
//
//  Проверяем:
//  - доставку сигнала подписчику своей темы и изоляцию тем;
//  - коалесцирование сигналов (буфер 1, Publish не блокируется);
//  - идемпотентный Close подписки и закрытие канала;
//  - поведение шины после Close (новые подписки получают закрытый канал).

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-community-service/internal/models"
)

func recvSignal(t *testing.T, c <-chan struct{}) {
	t.Helper()
	select {
	case _, ok := <-c:
		require.True(t, ok, "channel closed instead of signal")
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for signal")
	}
}

func requireNoSignal(t *testing.T, c <-chan struct{}) {
	t.Helper()
	select {
	case <-c:
		t.Fatal("unexpected signal")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PublishSubscribe(t *testing.T) {
	h := NewHub()
	defer h.Close()

	postA := uuid.New()
	postB := uuid.New()

	subA := h.Subscribe(CommentsTopic(postA))
	defer subA.Close()
	subB := h.Subscribe(CommentsTopic(postB))
	defer subB.Close()

	h.Publish(CommentsTopic(postA))

	recvSignal(t, subA.C)
	requireNoSignal(t, subB.C)
}

func TestHub_CoalescesSignals(t *testing.T) {
	h := NewHub()
	defer h.Close()

	sub := h.Subscribe(TypingTopic(uuid.New()))
	defer sub.Close()

	topic := sub.topic
	for i := 0; i < 10; i++ {
		h.Publish(topic) // не блокируется при полном буфере
	}

	recvSignal(t, sub.C)
	requireNoSignal(t, sub.C)
}

func TestHub_TopicsAreDistinctPerEntity(t *testing.T) {
	postID := uuid.New()

	require.NotEqual(t, CommentsTopic(postID), TypingTopic(postID))
	require.NotEqual(t,
		ReactionsTopic(models.EntityRef{Kind: models.EntityPost, ID: postID.String()}),
		ReactionsTopic(models.EntityRef{Kind: models.EntityComment, ID: postID.String()}),
	)
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	h := NewHub()
	defer h.Close()

	sub := h.Subscribe(CommentsTopic(uuid.New()))
	require.Equal(t, 1, h.Subscribers())

	sub.Close()
	sub.Close()
	require.Equal(t, 0, h.Subscribers())

	// Канал закрыт: чтение не блокируется.
	_, ok := <-sub.C
	require.False(t, ok)
}

func TestHub_PublishAfterUnsubscribe(t *testing.T) {
	h := NewHub()
	defer h.Close()

	topic := CommentsTopic(uuid.New())
	sub := h.Subscribe(topic)
	sub.Close()

	// Не должно паниковать и не должно доставлять.
	h.Publish(topic)
}

func TestHub_Close(t *testing.T) {
	h := NewHub()

	sub := h.Subscribe(CommentsTopic(uuid.New()))
	h.Close()

	_, ok := <-sub.C
	require.False(t, ok)

	// Повторный Close безопасен.
	h.Close()

	// Подписка после Close — сразу закрытый канал.
	late := h.Subscribe(TypingTopic(uuid.New()))
	_, ok = <-late.C
	require.False(t, ok)

	// Close такой подписки не паникует.
	late.Close()
}
