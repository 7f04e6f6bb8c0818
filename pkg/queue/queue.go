package queue

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelhq/guardsync/pkg/kv"
	"github.com/sentinelhq/guardsync/pkg/log"
)

// StorageKey is the single key the serialized queue lives under.
const StorageKey = "guardsync.offline_queue"

// ErrDrainInProgress is returned by BeginDrain while another drain holds
// the queue. Two overlapping drains would replay the same items twice.
var ErrDrainInProgress = errors.New("queue: drain already in progress")

// Action identifies the kind of queued mutation.
type Action string

const (
	ActionCreate         Action = "create"
	ActionUpdate         Action = "update"
	ActionDelete         Action = "delete"
	ActionUpdateLocation Action = "update_location"
)

// Item is one pending mutation awaiting delivery. RetryCount only ever
// grows while the item lives in the queue.
type Item struct {
	ID         string          `json:"id"`
	Action     Action          `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  time.Time       `json:"timestamp"`
	RetryCount int             `json:"retry_count"`
}

// Queue is a durable FIFO list of pending mutations. Every enqueue and
// every completed drain persists the full list under StorageKey, so the
// backlog survives process restarts. All mutation happens under a mutex;
// no lock is held across network calls.
type Queue struct {
	store  kv.Store
	logger log.Logger

	mu       sync.Mutex
	items    []Item
	draining bool
}

// New creates a Queue backed by store and loads any persisted backlog.
// Corrupt persisted state is discarded with a warning rather than
// surfaced as an error, so a bad write can never brick the client.
func New(store kv.Store, logger log.Logger) *Queue {
	q := &Queue{store: store, logger: logger}
	q.load()
	return q
}

func (q *Queue) load() {
	b, err := q.store.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			q.logger.Warn("offline queue load failed, starting empty", log.Err(err))
		}
		return
	}
	var items []Item
	if err := json.Unmarshal(b, &items); err != nil {
		q.logger.Warn("offline queue corrupt, starting empty", log.Err(err))
		return
	}
	q.items = items
}

// Enqueue appends item, assigning an ID and timestamp when unset, and
// persists the updated list. The stored item is returned.
func (q *Queue) Enqueue(item Item) Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}
	q.items = append(q.items, item)
	q.persistLocked()
	return item
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Oldest returns the enqueue timestamp of the oldest pending item.
// ok is false when the queue is empty.
func (q *Queue) Oldest() (ts time.Time, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return time.Time{}, false
	}
	return q.items[0].Timestamp, true
}

// Items returns a copy of the pending items for inspection.
func (q *Queue) Items() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}

// Clear discards all pending items and persists the empty state.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.persistLocked()
}

// BeginDrain snapshots the pending items and clears the live list,
// handing the snapshot to exactly one drainer. It fails with
// ErrDrainInProgress while a prior drain has not called EndDrain.
// Enqueues arriving during the drain land on the emptied live list and
// are untouched by the drain in progress.
func (q *Queue) BeginDrain() ([]Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.draining {
		return nil, ErrDrainInProgress
	}
	q.draining = true
	snapshot := q.items
	q.items = nil
	return snapshot, nil
}

// Requeue re-appends an item that failed delivery during a drain, with
// its retry count advanced.
func (q *Queue) Requeue(item Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	item.RetryCount++
	q.items = append(q.items, item)
}

// EndDrain persists whatever the drain left behind and releases the
// drain lock. Must be called exactly once per successful BeginDrain.
func (q *Queue) EndDrain() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.draining = false
	q.persistLocked()
}

// persistLocked serializes the current list under StorageKey.
// Callers must hold q.mu.
func (q *Queue) persistLocked() {
	items := q.items
	if items == nil {
		items = []Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		q.logger.Error("offline queue marshal failed", log.Err(err))
		return
	}
	if err := q.store.Set(StorageKey, b); err != nil {
		q.logger.Error("offline queue persist failed", log.Err(err))
	}
}
