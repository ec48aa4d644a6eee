package autosave

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
)

type fakeSaver struct {
	mu    sync.Mutex
	calls [][]byte
	err   error
}

func (s *fakeSaver) SaveContent(ctx context.Context, docID string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, payload)
	return nil
}

func (s *fakeSaver) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type memFallback struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemFallback() *memFallback {
	return &memFallback{data: make(map[string][]byte)}
}

func (f *memFallback) Store(docID string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[docID] = payload
	return nil
}

func (f *memFallback) Load(docID string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.data[docID]
	return p, ok, nil
}

func (f *memFallback) Delete(docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, docID)
	return nil
}

// fakeTimers собирает взведенные таймеры, срабатывание управляется тестом.
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	ft      *fakeTimers
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.ft.mu.Lock()
	defer t.ft.mu.Unlock()
	was := t.stopped
	t.stopped = true
	return !was
}

func (ft *fakeTimers) factory(d time.Duration, fn func()) stopper {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{ft: ft, fn: fn}
	ft.timers = append(ft.timers, t)
	return t
}

func (ft *fakeTimers) created() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.timers)
}

func (ft *fakeTimers) live() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	n := 0
	for _, t := range ft.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (ft *fakeTimers) fireLast() {
	ft.mu.Lock()
	fn := ft.timers[len(ft.timers)-1].fn
	ft.mu.Unlock()
	fn()
}

func docWithText(t *testing.T, text string) doctree.Document {
	t.Helper()
	return doctree.Document{
		Type: doctree.NodeDoc,
		Content: []doctree.Node{
			{Type: doctree.NodeParagraph, Content: []doctree.Node{{Type: doctree.NodeText, Text: text}}},
		},
	}
}

func TestObserveCoalescesToSingleSave(t *testing.T) {
	saver := &fakeSaver{}
	timers := &fakeTimers{}
	c := NewCoordinator(saver, newMemFallback(), WithTimerFactory(timers.factory))

	for _, text := range []string{"п", "по", "пол", "поли", "полив"} {
		if err := c.Observe("doc-1", docWithText(t, text)); err != nil {
			t.Fatalf("Observe() error = %v", err)
		}
	}

	// Каждое изменение перевзводит таймер, живым остается последний
	if got := timers.live(); got != 1 {
		t.Fatalf("live timers = %d, want 1", got)
	}
	if got := saver.callCount(); got != 0 {
		t.Fatalf("saves before timer fire = %d, want 0", got)
	}

	timers.fireLast()

	if got := saver.callCount(); got != 1 {
		t.Fatalf("saves after timer fire = %d, want 1", got)
	}

	// Записана последняя наблюдаемая версия
	want, _ := docWithText(t, "полив").Bytes()
	if string(saver.calls[0]) != string(want) {
		t.Errorf("saved payload = %s, want %s", saver.calls[0], want)
	}
	if got := c.Status("doc-1"); got != StatusSaved {
		t.Errorf("Status = %q, want %q", got, StatusSaved)
	}
}

func TestObserveReschedulesDebounceTimer(t *testing.T) {
	saver := &fakeSaver{}
	timers := &fakeTimers{}
	c := NewCoordinator(saver, newMemFallback(), WithTimerFactory(timers.factory))

	if err := c.Observe("doc-1", docWithText(t, "рассада")); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if err := c.Observe("doc-1", docWithText(t, "рассада томатов")); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}

	// Второе изменение отменяет прежний таймер и взводит новый: запись
	// уходит через интервал тишины после последнего изменения
	if got := timers.created(); got != 2 {
		t.Fatalf("created timers = %d, want 2", got)
	}
	if got := timers.live(); got != 1 {
		t.Fatalf("live timers = %d, want 1", got)
	}

	timers.fireLast()

	if got := saver.callCount(); got != 1 {
		t.Fatalf("saves = %d, want 1", got)
	}
	want, _ := docWithText(t, "рассада томатов").Bytes()
	if string(saver.calls[0]) != string(want) {
		t.Errorf("saved payload = %s, want %s", saver.calls[0], want)
	}
}

func TestObserveUnchangedDoesNotArmTimer(t *testing.T) {
	saver := &fakeSaver{}
	timers := &fakeTimers{}
	c := NewCoordinator(saver, newMemFallback(), WithTimerFactory(timers.factory))

	doc := docWithText(t, "монстера")
	if err := c.Observe("doc-1", doc); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	timers.fireLast()

	if got := saver.callCount(); got != 1 {
		t.Fatalf("saves = %d, want 1", got)
	}

	// Тот же документ повторно - таймер не взводится, запись не повторяется
	if err := c.Observe("doc-1", doc); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if got := timers.created(); got != 1 {
		t.Errorf("created timers = %d, want still 1", got)
	}
}

func TestSaveFailureGoesToFallback(t *testing.T) {
	saver := &fakeSaver{err: errors.New("db down")}
	fallback := newMemFallback()
	timers := &fakeTimers{}
	c := NewCoordinator(saver, fallback, WithTimerFactory(timers.factory))

	if err := c.Observe("doc-1", docWithText(t, "черенок")); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	timers.fireLast()

	if got := c.Status("doc-1"); got != StatusOffline {
		t.Errorf("Status = %q, want %q", got, StatusOffline)
	}

	payload, ok, err := c.Recover("doc-1")
	if err != nil || !ok {
		t.Fatalf("Recover() = %v, %v, %v; want payload", payload, ok, err)
	}

	// Взведен таймер повторной попытки
	if got := timers.created(); got != 2 {
		t.Fatalf("created timers = %d, want 2 (retry)", got)
	}

	// Хранилище ожило - повторная попытка успешна, резерв очищен
	saver.mu.Lock()
	saver.err = nil
	saver.mu.Unlock()
	timers.fireLast()

	if got := saver.callCount(); got != 1 {
		t.Fatalf("saves after retry = %d, want 1", got)
	}
	if got := c.Status("doc-1"); got != StatusSaved {
		t.Errorf("Status = %q, want %q", got, StatusSaved)
	}
	if _, ok, _ := c.Recover("doc-1"); ok {
		t.Error("fallback entry survived a successful save")
	}
}

func TestFlush(t *testing.T) {
	saver := &fakeSaver{}
	timers := &fakeTimers{}
	c := NewCoordinator(saver, newMemFallback(), WithTimerFactory(timers.factory))

	if err := c.Observe("doc-1", docWithText(t, "пересадка")); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if err := c.Flush(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := saver.callCount(); got != 1 {
		t.Fatalf("saves after flush = %d, want 1", got)
	}

	// Таймер отменен, повторного сохранения нет
	if err := c.Flush(context.Background(), "doc-1"); err != nil {
		t.Fatalf("second Flush() error = %v", err)
	}
	if got := saver.callCount(); got != 1 {
		t.Errorf("saves after idle flush = %d, want still 1", got)
	}
}

func TestCloseFlushesAllPending(t *testing.T) {
	saver := &fakeSaver{}
	timers := &fakeTimers{}
	c := NewCoordinator(saver, newMemFallback(), WithTimerFactory(timers.factory))

	c.Observe("doc-1", docWithText(t, "один"))
	c.Observe("doc-2", docWithText(t, "два"))

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := saver.callCount(); got != 2 {
		t.Errorf("saves after Close = %d, want 2", got)
	}
}

func TestBoltFallbackRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosave.db")
	f, err := NewBoltFallback(path)
	if err != nil {
		t.Fatalf("NewBoltFallback() error = %v", err)
	}
	defer f.Close()

	if _, ok, _ := f.Load("doc-1"); ok {
		t.Fatal("Load() before Store() returned payload")
	}

	payload := []byte(`{"type":"doc"}`)
	if err := f.Store("doc-1", payload); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, ok, err := f.Load("doc-1")
	if err != nil || !ok {
		t.Fatalf("Load() = %v, %v", ok, err)
	}
	if string(got) != string(payload) {
		t.Errorf("Load() = %s, want %s", got, payload)
	}

	keys, err := f.Keys()
	if err != nil || len(keys) != 1 || keys[0] != "doc-1" {
		t.Errorf("Keys() = %v, %v; want [doc-1]", keys, err)
	}

	if err := f.Delete("doc-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := f.Load("doc-1"); ok {
		t.Error("Load() after Delete() returned payload")
	}
}
