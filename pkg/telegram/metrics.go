package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/benderoz/BUH-uchet/pkg/services"
)

// Telegram bot metrics
var (
	// Счетчик обработанных команд по типам
	commandsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_processed_total",
			Help: "Total number of processed commands by type",
		},
		[]string{"command"}, // start, help, stats, undo, ...
	)

	// Счетчик обработанных сообщений по типам
	messagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_messages_processed_total",
			Help: "Total number of processed messages by type",
		},
		[]string{"type"}, // expense, wish, ignored
	)

	// Счетчик обработанных callback запросов по действиям
	callbacksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_callbacks_processed_total",
			Help: "Total number of processed callback queries by action",
		},
		[]string{"action"}, // purge, style
	)

	// Счетчик созданных расходов
	expensesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_expenses_created_total",
			Help: "Total number of expenses created",
		},
	)

	// Счетчик ошибок по типам
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // database, send_message, chart, download_file
	)

	// Гистограмма времени генерации комментария
	textGenDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telegram_text_generation_duration_seconds",
			Help:    "Duration of commentary generation in seconds",
			Buckets: []float64{0.5, 1.5, 2.5, 5, 10},
		},
	)

	// Гистограмма времени генерации картинки
	imageGenDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telegram_image_generation_duration_seconds",
			Help:    "Duration of image generation in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20},
		},
	)
)

// RestoreMetrics re-primes the counter vectors from a snapshot queried off an
// external Prometheus, so rates survive a restart.
func RestoreMetrics(snapshot *services.MetricsSnapshot) {
	if snapshot == nil {
		return
	}

	for command, v := range snapshot.CommandsProcessed {
		commandsProcessed.WithLabelValues(command).Add(v)
	}
	for typ, v := range snapshot.MessagesProcessed {
		messagesProcessed.WithLabelValues(typ).Add(v)
	}
	for action, v := range snapshot.CallbacksProcessed {
		callbacksProcessed.WithLabelValues(action).Add(v)
	}
	for typ, v := range snapshot.ErrorsTotal {
		errorsTotal.WithLabelValues(typ).Add(v)
	}
}

// RestoreExpensesCreated primes the expense counter, restored from the row
// count in the database rather than from Prometheus.
func RestoreExpensesCreated(count int) {
	if count > 0 {
		expensesCreated.Add(float64(count))
	}
}
