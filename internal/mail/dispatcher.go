package mail

import (
	"sync"

	"github.com/Kyz7/storefront/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Dispatcher queues messages and delivers them from one worker goroutine.
type Dispatcher struct {
	sender  Sender
	log     *logrus.Logger
	metrics *metrics.Metrics
	queue   chan Message

	mu      sync.Mutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, log *logrus.Logger, m *metrics.Metrics, size int) *Dispatcher {
	if size <= 0 {
		size = 64
	}
	return &Dispatcher{sender: sender, log: log, metrics: m, queue: make(chan Message, size)}
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for msg := range d.queue {
			err := d.sender.Send(msg)
			d.metrics.ObserveMail(err)
			if err != nil {
				d.log.WithError(err).WithField("subject", msg.Subject).Error("mail delivery failed")
				continue
			}
			d.log.WithField("to", msg.To).Debug("mail delivered")
		}
	}()
}

// Enqueue reports false when the queue is full or the dispatcher is stopped.
// The message is dropped in that case.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.log.WithField("subject", msg.Subject).Warn("mail queue full, dropping message")
		return false
	}
}

// Stop closes the queue and waits for queued messages to be delivered.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}
