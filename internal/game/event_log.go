package game

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize    = 1024
	MaxEventsPerSec    = 2000
	BatchFlushSize     = 64
	BatchFlushInterval = 250 * time.Millisecond
)

// EventLog is a bounded, rate-limited JSONL sink for session events.
// Emit never blocks the tick: when the ring is full the oldest entry is
// overwritten and counted as dropped.
type EventLog struct {
	mu       sync.Mutex
	buffer   [EventBufferSize]Event
	head     uint64 // next write position
	tail     uint64 // next read position
	sequence uint64

	limiter *rate.Limiter

	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	file *os.File

	dropped atomic.Uint64
	total   atomic.Uint64
}

// NewEventLog creates an idle event log. Nothing is recorded until Start.
func NewEventLog() *EventLog {
	return &EventLog{
		limiter:  rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan: make(chan struct{}),
	}
}

// Start opens filePath for append and launches the batch writer.
// An empty path keeps events in memory only.
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		el.file = f
	}

	el.running.Store(true)
	el.wg.Add(1)
	go el.writerLoop()
	return nil
}

// Stop flushes pending events and closes the file
func (el *EventLog) Stop() {
	if el == nil {
		return
	}
	el.stopOnce.Do(func() {
		if !el.running.Load() {
			return
		}
		el.running.Store(false)
		close(el.stopChan)
		el.wg.Wait()
		if el.file != nil {
			el.file.Close()
		}
	})
}

// Emit records an event. Returns false when the log is stopped or the event
// was rate limited.
func (el *EventLog) Emit(event Event) bool {
	if el == nil || !el.running.Load() {
		return false
	}
	if !el.limiter.Allow() {
		el.dropped.Add(1)
		return false
	}

	el.mu.Lock()
	el.sequence++
	event.Sequence = el.sequence
	if el.head-el.tail >= EventBufferSize {
		el.tail++
		el.dropped.Add(1)
	}
	el.buffer[el.head%EventBufferSize] = event
	el.head++
	el.mu.Unlock()

	el.total.Add(1)
	return true
}

func (el *EventLog) writerLoop() {
	defer el.wg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, BatchFlushSize)
	for {
		select {
		case <-el.stopChan:
			for {
				batch = el.collect(batch[:0])
				if len(batch) == 0 {
					return
				}
				el.flush(batch)
			}
		case <-ticker.C:
			batch = el.collect(batch[:0])
			if len(batch) > 0 {
				el.flush(batch)
			}
		}
	}
}

func (el *EventLog) collect(batch []Event) []Event {
	el.mu.Lock()
	defer el.mu.Unlock()
	for el.tail < el.head && len(batch) < BatchFlushSize {
		batch = append(batch, el.buffer[el.tail%EventBufferSize])
		el.tail++
	}
	return batch
}

func (el *EventLog) flush(batch []Event) {
	if el.file == nil {
		return
	}
	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		el.file.Write(append(data, '\n'))
	}
}

// EventLogStats is a point-in-time view of the log's counters
type EventLogStats struct {
	Total   uint64 `json:"total"`
	Dropped uint64 `json:"dropped"`
	Pending int    `json:"pending"` // emitted but not yet flushed
	Running bool   `json:"running"`
}

// Stats returns the current counters
func (el *EventLog) Stats() EventLogStats {
	if el == nil {
		return EventLogStats{}
	}
	el.mu.Lock()
	pending := int(el.head - el.tail)
	el.mu.Unlock()
	return EventLogStats{
		Total:   el.total.Load(),
		Dropped: el.dropped.Load(),
		Pending: pending,
		Running: el.running.Load(),
	}
}

// Totals returns the cumulative emitted and dropped counts
func (el *EventLog) Totals() (total, dropped uint64) {
	if el == nil {
		return 0, 0
	}
	return el.total.Load(), el.dropped.Load()
}
