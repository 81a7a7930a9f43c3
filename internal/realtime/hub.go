// Package realtime — доставка сигналов «данные по теме изменились» до
// live-подписок. Сигнал не несёт полезной нагрузки: подписчик по нему
// перечитывает полный снапшот из хранилища (контракт документного стора —
// полный результат на каждое изменение).
//
// Вместо глобального реестра слушателей (как в исходной реализации) — явные
// хэндлы подписок с детерминированным Close: жизненный цикл не привязан к
// mount/unmount фреймворка и прозрачно тестируется.
package realtime

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-community-service/internal/models"
)

// Topic — имя темы изменения.
type Topic string

// CommentsTopic — изменения коллекции комментариев поста.
func CommentsTopic(postID uuid.UUID) Topic {
	return Topic("comments:" + postID.String())
}

// ReactionsTopic — изменения реакций сущности.
func ReactionsTopic(entity models.EntityRef) Topic {
	return Topic(fmt.Sprintf("reactions:%s:%s", entity.Kind, entity.ID))
}

// TypingTopic — изменения typing-присутствия поста.
func TypingTopic(postID uuid.UUID) Topic {
	return Topic("typing:" + postID.String())
}

// Bus — контракт шины для сервисного слоя: публикация сигналов и подписка.
// Реализации: Hub (один инстанс) и Bridge (фан-аут через Redis).
type Bus interface {
	Publish(topic Topic)
	Subscribe(topic Topic) *Subscription
}

// Subscription — явный хэндл подписки. Канал C коалесцирует сигналы:
// буфер 1, необработанный сигнал не накапливается (подписчик всё равно
// перечитает актуальный снапшот целиком).
type Subscription struct {
	C <-chan struct{}

	hub   *Hub
	topic Topic
	ch    chan struct{}
	once  sync.Once
}

// Close отписывает хэндл и закрывает канал. Идемпотентен.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s)
		close(s.ch)
	})
}

// Hub — in-process шина тем.
type Hub struct {
	mu     sync.RWMutex
	subs   map[Topic]map[*Subscription]struct{}
	closed bool
}

// NewHub создаёт пустую шину.
func NewHub() *Hub {
	return &Hub{subs: make(map[Topic]map[*Subscription]struct{})}
}

// Subscribe возвращает хэндл подписки на тему.
// После Close шины новые подписки получают уже закрытый канал.
func (h *Hub) Subscribe(topic Topic) *Subscription {
	s := &Subscription{hub: h, topic: topic, ch: make(chan struct{}, 1)}
	s.C = s.ch

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(s.ch)
		s.once.Do(func() {})
		return s
	}

	set, ok := h.subs[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[topic] = set
	}
	set[s] = struct{}{}

	return s
}

// Publish сигналит всем подписчикам темы. Никогда не блокируется:
// переполненный буфер означает, что подписчик ещё не обработал прошлый
// сигнал и перечитает свежие данные по нему.
func (h *Hub) Publish(topic Topic) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for s := range h.subs[topic] {
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers возвращает текущее число подписок (для метрик).
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.subs {
		n += len(set)
	}

	return n
}

// Close закрывает шину и все активные подписки.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := h.subs
	h.subs = make(map[Topic]map[*Subscription]struct{})
	h.mu.Unlock()

	for _, set := range subs {
		for s := range set {
			s.once.Do(func() { close(s.ch) })
		}
	}
}

func (h *Hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[s.topic]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.topic)
		}
	}
}
