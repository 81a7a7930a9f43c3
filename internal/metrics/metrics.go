// Package metrics — прометеевские метрики сервиса. Регистрируются в
// дефолтном реестре и отдаются promhttp-хендлером на ops-листенере.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommentsCreated — созданные комментарии (label kind: root/reply).
	CommentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "community",
		Name:      "comments_created_total",
		Help:      "Created comments.",
	}, []string{"kind"})

	// CommentsDeleted — удалённые комментарии.
	CommentsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "community",
		Name:      "comments_deleted_total",
		Help:      "Hard-deleted comments.",
	})

	// ReactionsToggled — переключения реакций (label action: set/switch/clear).
	ReactionsToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "community",
		Name:      "reactions_toggled_total",
		Help:      "Reaction toggle operations.",
	}, []string{"action"})

	// TypingStarted — отметки «печатает» (новые и продлённые).
	TypingStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "community",
		Name:      "typing_started_total",
		Help:      "Typing presence upserts.",
	})
)

// RegisterSubscribersGauge публикует gauge числа активных realtime-подписок.
func RegisterSubscribersGauge(f func() int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "community",
		Name:      "realtime_subscribers",
		Help:      "Active realtime subscriptions.",
	}, func() float64 { return float64(f()) })
}
