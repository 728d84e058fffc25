package messaging

import (
	"sync"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/metrics"
)

// Ledger is the append-only registry of broadcasts. Implementations
// return records oldest first and hand out the live records themselves,
// not copies, so broadcasts still in flight stay observable.
type Ledger interface {
	Append(record *BroadcastRecord)
	List() []*BroadcastRecord
}

// MemoryLedger keeps the broadcast history in process memory. History
// does not survive restarts.
type MemoryLedger struct {
	mu      sync.RWMutex
	records []*BroadcastRecord
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (l *MemoryLedger) Append(record *BroadcastRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	metrics.SetLedgerSize(len(l.records))
}

// List returns the records in append order. The slice is a copy; the
// records are shared with writers.
func (l *MemoryLedger) List() []*BroadcastRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*BroadcastRecord, len(l.records))
	copy(out, l.records)
	return out
}
