// Пакет autosave реализует координатор автосохранения документов редактора.
// Каждое изменение перевзводит таймер тишины, запись происходит одним
// сохранением после паузы в редактировании. При недоступности основного
// хранилища полезная нагрузка уходит в локальный резерв и не теряется.
//
// Основные возможности:
//   - Отложенное сохранение с настраиваемым интервалом (по умолчанию 20с).
//   - Сравнение сериализованного документа с последней сохраненной версией,
//     неизмененный документ не трогает таймер.
//   - Резервное хранилище по идентификатору документа на случай сбоя.
//   - Метрики количества сохранений и сбоев.
package autosave

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
	"github.com/prometheus/client_golang/prometheus"
)

// Интервал тишины перед записью по умолчанию.
const DefaultInterval = 20 * time.Second

// Status - состояние сохранения документа.
type Status string

const (
	// StatusSaved - последняя наблюдаемая версия записана в основное хранилище.
	StatusSaved Status = "saved"
	// StatusOffline - запись не удалась, версия лежит в резерве.
	StatusOffline Status = "offline"
)

// Saver записывает содержимое документа в основное хранилище.
type Saver interface {
	SaveContent(ctx context.Context, docID string, payload []byte) error
}

// Fallback - резервное хранилище полезной нагрузки по идентификатору документа.
type Fallback interface {
	Store(docID string, payload []byte) error
	Load(docID string) ([]byte, bool, error)
	Delete(docID string) error
}

type stopper interface {
	Stop() bool
}

type timerFactory func(d time.Duration, fn func()) stopper

func realTimer(d time.Duration, fn func()) stopper {
	return time.AfterFunc(d, fn)
}

type docState struct {
	pending   []byte
	lastSaved []byte
	timer     stopper
	status    Status
}

// Coordinator управляет отложенным сохранением документов.
type Coordinator struct {
	saver    Saver
	fallback Fallback
	interval time.Duration
	newTimer timerFactory

	mu   sync.Mutex
	docs map[string]*docState

	savesTotal    prometheus.Counter
	failuresTotal prometheus.Counter
}

// Option настраивает координатор.
type Option func(*Coordinator)

// WithInterval задает интервал тишины перед записью.
func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.interval = d }
}

// WithTimerFactory подменяет источник таймеров. Используется в тестах.
func WithTimerFactory(f timerFactory) Option {
	return func(c *Coordinator) { c.newTimer = f }
}

// NewCoordinator создает координатор автосохранения.
func NewCoordinator(saver Saver, fallback Fallback, opts ...Option) *Coordinator {
	c := &Coordinator{
		saver:    saver,
		fallback: fallback,
		interval: DefaultInterval,
		newTimer: realTimer,
		docs:     make(map[string]*docState),
		savesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autosave_saves_total",
			Help: "Total count of successful autosave writes",
		}),
		failuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autosave_save_failures_total",
			Help: "Total count of failed autosave writes",
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collectors возвращает метрики координатора для регистрации.
func (c *Coordinator) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.savesTotal, c.failuresTotal}
}

// Observe принимает очередное состояние документа. Если сериализованное
// содержимое совпадает с последней записанной версией, вызов ничего не
// делает. Иначе таймер отложенной записи перевзводится заново: запись
// происходит через интервал тишины после последнего изменения.
func (c *Coordinator) Observe(docID string, doc doctree.Document) error {
	payload, err := doc.Bytes()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state(docID)
	if bytes.Equal(payload, st.lastSaved) {
		if st.pending != nil {
			// Пользователь вернулся к сохраненной версии до срабатывания
			// таймера, запишем именно ее
			st.pending = payload
		}
		return nil
	}

	st.pending = payload
	if st.timer != nil {
		st.timer.Stop()
	}
	st.timer = c.newTimer(c.interval, func() { c.fire(docID) })
	return nil
}

// Flush немедленно записывает отложенные изменения документа.
func (c *Coordinator) Flush(ctx context.Context, docID string) error {
	c.mu.Lock()
	st := c.state(docID)
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	c.mu.Unlock()

	return c.save(ctx, docID)
}

// Status возвращает состояние сохранения документа.
func (c *Coordinator) Status(docID string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.docs[docID]; ok {
		return st.status
	}
	return StatusSaved
}

// Recover возвращает резервную копию документа, если она есть.
// Отдается редактору при открытии, чтобы работа пережила сбой.
func (c *Coordinator) Recover(docID string) ([]byte, bool, error) {
	return c.fallback.Load(docID)
}

// Close записывает все отложенные изменения.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	ids := make([]string, 0, len(c.docs))
	for id, st := range c.docs {
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
		if st.pending != nil {
			ids = append(ids, id)
		}
	}
	c.mu.Unlock()

	var lastErr error
	for _, id := range ids {
		if err := c.save(context.Background(), id); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// state возвращает состояние документа. Вызывается под c.mu.
func (c *Coordinator) state(docID string) *docState {
	st, ok := c.docs[docID]
	if !ok {
		st = &docState{status: StatusSaved}
		c.docs[docID] = st
	}
	return st
}

func (c *Coordinator) fire(docID string) {
	c.mu.Lock()
	if st, ok := c.docs[docID]; ok {
		st.timer = nil
	}
	c.mu.Unlock()

	if err := c.save(context.Background(), docID); err != nil {
		slog.Error("Autosave write failed", "doc", docID, "err", err)
	}
}

func (c *Coordinator) save(ctx context.Context, docID string) error {
	c.mu.Lock()
	st := c.state(docID)
	payload := st.pending
	c.mu.Unlock()

	if payload == nil {
		return nil
	}

	err := c.saver.SaveContent(ctx, docID, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.failuresTotal.Inc()
		st.status = StatusOffline
		if ferr := c.fallback.Store(docID, payload); ferr != nil {
			slog.Error("Autosave fallback store failed", "doc", docID, "err", ferr)
		}
		// Полезная нагрузка остается отложенной до следующей попытки
		if st.timer == nil {
			st.timer = c.newTimer(c.interval, func() { c.fire(docID) })
		}
		return err
	}

	c.savesTotal.Inc()
	st.status = StatusSaved
	st.lastSaved = payload
	if bytes.Equal(st.pending, payload) {
		st.pending = nil
	}
	if err := c.fallback.Delete(docID); err != nil {
		slog.Warn("Autosave fallback delete failed", "doc", docID, "err", err)
	}
	return nil
}
