package events

import (
	"sync"
	"sync/atomic"

	"github.com/kcaldas/condenser/pkg/logging"
)

const defaultTopicBuffer = 256

// Handler receives one published event.
type Handler func(event Event)

// Publisher allows publishing events
type Publisher interface {
	Publish(event Event)
}

// Subscriber allows subscribing to events
type Subscriber interface {
	Subscribe(topic string, handler Handler)
}

// Bus provides both publishing and subscribing. Shutdown delivers every
// queued event before returning; later publishes are dropped.
type Bus interface {
	Publisher
	Subscriber
	Shutdown()
}

// InMemoryBus delivers events in order per topic, one worker goroutine
// per topic.
type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	workers     map[string]*topicWorker
	bufferSize  int
	closed      bool
	dropped     atomic.Int64
	logger      logging.Logger
}

// NewBus creates a bus with the default per-topic buffer.
func NewBus() *InMemoryBus {
	return NewBusWithBuffer(defaultTopicBuffer)
}

// NewBusWithBuffer sets the per-topic queue size, at least 1.
func NewBusWithBuffer(buffer int) *InMemoryBus {
	if buffer < 1 {
		buffer = 1
	}
	return &InMemoryBus{
		subscribers: make(map[string][]Handler),
		workers:     make(map[string]*topicWorker),
		bufferSize:  buffer,
		logger:      logging.NewComponentLogger("events"),
	}
}

// Subscribe adds a handler for topic. The wildcard topic "*" receives
// every event.
func (b *InMemoryBus) Subscribe(topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[topic] = append(b.subscribers[topic], handler)
}

// Publish queues event for its topic's subscribers without blocking. When
// the topic queue is full the event is dropped and counted.
func (b *InMemoryBus) Publish(event Event) {
	if event == nil {
		return
	}
	topic := event.Topic()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		b.dropped.Add(1)
		return
	}
	handlers := append(append([]Handler(nil), b.subscribers[topic]...), b.subscribers[Wildcard]...)
	if len(handlers) == 0 {
		return
	}

	worker, ok := b.workers[topic]
	if !ok {
		worker = newTopicWorker(b.bufferSize, b.logger)
		b.workers[topic] = worker
	}

	select {
	case worker.ch <- envelope{event: event, handlers: handlers}:
	default:
		b.dropped.Add(1)
		b.logger.Warn("event queue full, dropping event", "topic", topic)
	}
}

// DroppedCount returns the number of events that were never delivered.
func (b *InMemoryBus) DroppedCount() int64 {
	return b.dropped.Load()
}

// Shutdown drains and stops all topic workers.
func (b *InMemoryBus) Shutdown() {
	b.mu.Lock()
	b.closed = true
	workers := make([]*topicWorker, 0, len(b.workers))
	for _, w := range b.workers {
		workers = append(workers, w)
	}
	b.mu.Unlock()

	for _, w := range workers {
		w.stop()
	}
}

type envelope struct {
	event    Event
	handlers []Handler
}

type topicWorker struct {
	ch       chan envelope
	wg       sync.WaitGroup
	stopOnce sync.Once
	logger   logging.Logger
}

func newTopicWorker(buffer int, logger logging.Logger) *topicWorker {
	w := &topicWorker{
		ch:     make(chan envelope, buffer),
		logger: logger,
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *topicWorker) run() {
	defer w.wg.Done()
	for env := range w.ch {
		for _, h := range env.handlers {
			w.deliver(h, env.event)
		}
	}
}

func (w *topicWorker) deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("event handler panicked", "topic", e.Topic(), "panic", r)
		}
	}()
	h(e)
}

func (w *topicWorker) stop() {
	w.stopOnce.Do(func() {
		close(w.ch)
		w.wg.Wait()
	})
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}
