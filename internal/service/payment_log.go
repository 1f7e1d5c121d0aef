package service

import (
	"context"
	"log"
	"sync"
	"time"

	"hostel/internal/model"
	"hostel/internal/repository"
)

const (
	paymentLogBuffer    = 100
	paymentLogBatchSize = 10
	paymentLogFlush     = time.Second
)

// paymentLogger writes payment attempts in the background so auditing never
// slows down or fails a payment.
type paymentLogger struct {
	repo    repository.PaymentLogRepository
	entries chan model.PaymentLog
	done    chan struct{}
	once    sync.Once

	mu     sync.RWMutex
	closed bool
}

func newPaymentLogger(repo repository.PaymentLogRepository) *paymentLogger {
	l := &paymentLogger{
		repo:    repo,
		entries: make(chan model.PaymentLog, paymentLogBuffer),
		done:    make(chan struct{}),
	}
	go l.run()
	return l
}

// record queues an entry. A full buffer or a closed logger drops it.
func (l *paymentLogger) record(entry model.PaymentLog) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		log.Printf("payment log closed, dropping attempt for %s", entry.CNIC)
		return
	}
	select {
	case l.entries <- entry:
	default:
		log.Printf("payment log buffer full, dropping attempt for %s", entry.CNIC)
	}
}

// close flushes queued entries and stops the worker.
func (l *paymentLogger) close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.entries)
		l.mu.Unlock()
		<-l.done
	})
}

func (l *paymentLogger) run() {
	defer close(l.done)

	batch := make([]model.PaymentLog, 0, paymentLogBatchSize)
	ticker := time.NewTicker(paymentLogFlush)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := l.repo.CreateBatch(context.Background(), batch); err != nil {
			log.Printf("write payment logs: %v", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry, ok := <-l.entries:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= paymentLogBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
