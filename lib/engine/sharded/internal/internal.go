package internal

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/ukvlib/ukv/lib/engine"
	"github.com/ukvlib/ukv/lib/engine/util"
)

// --------------------------------------------------------------------------
// Event Types are used to signal expiry-schedule changes to the sweeper
// --------------------------------------------------------------------------

type EventType int

const (
	// EventTSchedule asks the sweeper to track a key until its deadline
	EventTSchedule EventType = iota
	// EventTCancel asks the sweeper to stop tracking a key
	EventTCancel
)

func (e EventType) String() string {
	switch e {
	case EventTSchedule:
		return "Schedule"
	case EventTCancel:
		return "Cancel"
	default:
		return "Unknown"
	}
}

type Event struct {
	Type     EventType
	Key      string
	Deadline uint64 // expiry deadline in unix nanoseconds, only set for Schedule events
}

func (e Event) String() string {
	return fmt.Sprintf("Event{Type: %s, Key: %q, Deadline: %d}", e.Type, e.Key, e.Deadline)
}

// --------------------------------------------------------------------------
// Shard Type (partition of the key space)
// --------------------------------------------------------------------------

// Shard represents a partition of the key space.
// Each shard has its own independent map, sweep heap and event queue, so
// operations on keys in different shards never contend.
type Shard struct {
	Data       *xsync.MapOf[string, engine.Entry] // Map of active key-value entries
	ExpiryHeap *util.SweepHeap                    // Deadline-ordered schedule, owned by the sweeper
	Events     *util.LockFreeMPSC[Event]          // Writer -> sweeper hand-off
}

// NewShard creates a new shard
func NewShard() *Shard {
	return &Shard{
		Data:       xsync.NewMapOf[string, engine.Entry](),
		ExpiryHeap: util.NewSweepHeap(),
		Events:     util.NewLockFreeMPSC[Event](), // this queue is closed to stop the sweeper per shard
	}
}

// GetShard returns the appropriate shard for a given key hash
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func GetShard(hash uint64, shards []*Shard) *Shard {
	// Shift right by 7 bits to use higher-quality bits for distribution
	shifted := hash >> 7
	return shards[shifted%uint64(len(shards))]
}
