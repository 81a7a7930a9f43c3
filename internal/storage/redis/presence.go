// Package redis — эфемерное typing-присутствие поверх Redis.
//
// Схема ключей (prefix по умолчанию "community"):
//   - <prefix>:typing:<postID>:<userID> — JSON отметки, TTL = окно простоя
//     с небольшим запасом (страховка от клиентов, умерших посреди набора);
//   - <prefix>:typingidx:<postID>      — set userID-ов для выборки по посту.
//
// Снятие отметки по таймеру — забота сервисного трекера; TTL лишь добивает
// записи, до которых таймер не дожил.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisdriver "github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-community-service/internal/models"
)

// ttlGrace — запас TTL поверх окна простоя, чтобы читатели не наблюдали
// мерцание отметки на границе окна.
const ttlGrace = 2 * time.Second

// Redis — клиент typing-присутствия.
type Redis struct {
	client *redisdriver.Client
	prefix string
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "community".
func New(redisURL, prefix string) (*Redis, error) {
	if prefix == "" {
		prefix = "community"
	}

	opt, err := redisdriver.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}

	rdb := redisdriver.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{client: rdb, prefix: prefix}, nil
}

// Client отдаёт низкоуровневый клиент для соседних компонентов
// (realtime-мост использует pub/sub на том же соединении).
func (r *Redis) Client() *redisdriver.Client {
	return r.client
}

func (r *Redis) typingKey(postID, userID uuid.UUID) string {
	return fmt.Sprintf("%s:typing:%s:%s", r.prefix, postID, userID)
}

func (r *Redis) indexKey(postID uuid.UUID) string {
	return fmt.Sprintf("%s:typingidx:%s", r.prefix, postID)
}

// typingEntry — JSON-представление отметки в значении ключа.
type typingEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	UpdatedAt   int64  `json:"updated_at"`
}

// UpsertTyping создаёт/обновляет отметку с TTL = ttl + запас.
// Повторный вызов до истечения TTL сдвигает срок жизни (debounce).
func (r *Redis) UpsertTyping(ctx context.Context, p models.TypingPresence, ttl time.Duration) error {
	const op = "storage/redis/UpsertTyping"

	entry := typingEntry{
		UserID:      p.UserID.String(),
		DisplayName: p.DisplayName,
		UpdatedAt:   time.Now().Unix(),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.typingKey(p.PostID, p.UserID), raw, ttl+ttlGrace)
	pipe.SAdd(ctx, r.indexKey(p.PostID), p.UserID.String())
	pipe.Expire(ctx, r.indexKey(p.PostID), ttl+ttlGrace)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteTyping снимает отметку. Идемпотентна: отсутствие ключа не ошибка.
func (r *Redis) DeleteTyping(ctx context.Context, postID, userID uuid.UUID) error {
	const op = "storage/redis/DeleteTyping"

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.typingKey(postID, userID))
	pipe.SRem(ctx, r.indexKey(postID), userID.String())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListTyping возвращает актуальные отметки по посту.
// Протухшие элементы индекса (ключ значения уже добит TTL) лениво
// подчищаются из set-а.
func (r *Redis) ListTyping(ctx context.Context, postID uuid.UUID) ([]models.TypingPresence, error) {
	const op = "storage/redis/ListTyping"

	members, err := r.client.SMembers(ctx, r.indexKey(postID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: smembers: %w", op, err)
	}

	if len(members) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(members))
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			_ = r.client.SRem(ctx, r.indexKey(postID), m).Err()
			continue
		}

		ids = append(ids, id)
		keys = append(keys, r.typingKey(postID, id))
	}

	if len(keys) == 0 {
		return nil, nil
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: mget: %w", op, err)
	}

	var out []models.TypingPresence
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// Значение добито TTL — вычищаем осиротевший элемент индекса.
			_ = r.client.SRem(ctx, r.indexKey(postID), ids[i].String()).Err()
			continue
		}

		var entry typingEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}

		name := entry.DisplayName
		if name == "" {
			name = models.UnknownUserName
		}

		out = append(out, models.TypingPresence{
			PostID:      postID,
			UserID:      ids[i],
			DisplayName: name,
			UpdatedAt:   time.Unix(entry.UpdatedAt, 0).UTC(),
		})
	}

	return out, nil
}

// Close закрывает клиент Redis.
func (r *Redis) Close() error {
	return r.client.Close()
}
