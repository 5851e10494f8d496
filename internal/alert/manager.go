package alert

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Notifier interface {
	Notify(ctx context.Context, msg string) error
}

// Alerter receives important operational events (orders placed or canceled,
// health degradations). Implementations must not block the caller.
type Alerter interface {
	Important(event string, fields map[string]string)
}

const defaultAlertQueueSize = 128

// Manager fans important events out to a Notifier from a background loop so a
// slow notification channel can never stall a request. A nil *Manager is a
// valid no-op Alerter.
type Manager struct {
	service  string
	notifier Notifier
	queue    chan alertEvent
	stop     chan struct{}
	done     chan struct{}
	dropped  uint64
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

type alertEvent struct {
	event  string
	fields map[string]string
}

func NewManager(service string, notifier Notifier) *Manager {
	return NewManagerWithQueueSize(service, notifier, defaultAlertQueueSize)
}

func NewManagerWithQueueSize(service string, notifier Notifier, queueSize int) *Manager {
	if notifier == nil {
		return nil
	}
	if queueSize <= 0 {
		queueSize = defaultAlertQueueSize
	}
	m := &Manager{
		service:  service,
		notifier: notifier,
		queue:    make(chan alertEvent, queueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	m.wg.Add(1)
	go m.loop()
	go func() {
		m.wg.Wait()
		close(m.done)
	}()
	return m
}

func (m *Manager) Important(event string, fields map[string]string) {
	if m == nil || m.notifier == nil {
		return
	}
	ev := alertEvent{
		event:  event,
		fields: cloneFields(fields),
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.queue <- ev:
	default:
		dropped := atomic.AddUint64(&m.dropped, 1)
		log.Printf(
			"level=WARN event=alert_queue_dropped target_event=%q dropped_total=%d queue_cap=%d",
			event,
			dropped,
			cap(m.queue),
		)
	}
}

// Close drains queued events, bounded by ctx.
func (m *Manager) Close(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.stop)
	done := m.done
	m.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) loop() {
	defer m.wg.Done()
	for {
		select {
		case ev := <-m.queue:
			m.send(ev)
		case <-m.stop:
			for {
				select {
				case ev := <-m.queue:
					m.send(ev)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) send(ev alertEvent) {
	msg := m.buildMessage(ev.event, ev.fields)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := m.notifier.Notify(ctx, msg); err != nil {
		log.Printf("level=ERROR event=alert_notify_failed target_event=%q err=%q", ev.event, err.Error())
	}
}

func (m *Manager) buildMessage(event string, fields map[string]string) string {
	lines := []string{
		"[" + m.service + "] important",
		"time: " + time.Now().UTC().Format(time.RFC3339),
		"event: " + event,
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, k+": "+fields[k])
	}
	return strings.Join(lines, "\n")
}

func cloneFields(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
