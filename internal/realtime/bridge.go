package realtime

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	redisdriver "github.com/redis/go-redis/v9"
)

// Bridge реплицирует сигналы шины между инстансами сервиса через Redis
// pub/sub: локальная публикация уходит и в локальную шину, и в канал Redis;
// чужие сообщения из канала доигрываются в локальную шину.
//
// Доставка best-effort: недоступность Redis логируется и не ломает
// локальные подписки.
type Bridge struct {
	hub     *Hub
	rdb     *redisdriver.Client
	channel string
	origin  string
	log     *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewBridge создаёт мост и запускает цикл приёма.
func NewBridge(hub *Hub, rdb *redisdriver.Client, channel string, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	b := &Bridge{
		hub:     hub,
		rdb:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
		log:     log,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go b.loop(ctx)

	return b
}

// Publish сигналит локальной шине и транслирует сигнал соседним инстансам.
func (b *Bridge) Publish(topic Topic) {
	b.hub.Publish(topic)

	payload := b.origin + "|" + string(topic)
	if err := b.rdb.Publish(context.Background(), b.channel, payload).Err(); err != nil {
		b.log.Warn("realtime_bridge_publish_failed",
			slog.String("topic", string(topic)),
			slog.String("err", err.Error()),
		)
	}
}

// Subscribe делегирует подписку локальной шине.
func (b *Bridge) Subscribe(topic Topic) *Subscription {
	return b.hub.Subscribe(topic)
}

// loop принимает чужие сигналы из канала Redis и доигрывает их локально.
// Свои сообщения (совпадает origin) пропускаются: локальная шина уже
// получила сигнал напрямую.
func (b *Bridge) loop(ctx context.Context) {
	defer close(b.done)

	ps := b.rdb.Subscribe(ctx, b.channel)
	defer func() { _ = ps.Close() }()

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			origin, topic, found := strings.Cut(msg.Payload, "|")
			if !found || origin == b.origin || topic == "" {
				continue
			}

			b.hub.Publish(Topic(topic))
		}
	}
}

// Close останавливает цикл приёма. Локальная шина остаётся работоспособной.
func (b *Bridge) Close() {
	b.cancel()
	<-b.done
}
