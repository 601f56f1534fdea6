package worker

import (
	"sort"
	"sync"

	"github.com/jittakal/boundedbuffer/internal/errors"
	"github.com/jittakal/boundedbuffer/pkg/event"
)

// Ledger records every item that entered and left the buffer during a run.
// It is safe for concurrent use.
type Ledger struct {
	mu           sync.Mutex
	inserted     map[string]struct{}
	ids          map[string]string // event ID -> tag
	extracted    map[string]int
	unidentified []string               // IDs of extracted items whose tag could not be read
	last         map[int]map[string]int // consumer -> producer -> last sequence seen
	outOfOrder   []string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		inserted:  make(map[string]struct{}),
		ids:       make(map[string]string),
		extracted: make(map[string]int),
		last:      make(map[int]map[string]int),
	}
}

// RecordInsert records an item that a producer inserted under the given
// event ID.
func (l *Ledger) RecordInsert(tag event.Tag, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inserted[tag.String()] = struct{}{}
	l.ids[id] = tag.String()
}

// RecordExtract records an item that a consumer extracted. Records of one
// consumer must be passed in extraction order.
func (l *Ledger) RecordExtract(r event.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.extracted[r.Tag.String()]++

	seen, ok := l.last[r.ConsumerID]
	if !ok {
		seen = make(map[string]int)
		l.last[r.ConsumerID] = seen
	}
	if prev, ok := seen[r.Tag.ProducerID]; ok && r.Tag.Sequence <= prev {
		l.outOfOrder = append(l.outOfOrder, r.Tag.String())
	}
	seen[r.Tag.ProducerID] = r.Tag.Sequence
}

// RecordUnidentified records an extracted item whose tag could not be read.
// Verify matches it to an inserted item by event ID.
func (l *Ledger) RecordUnidentified(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unidentified = append(l.unidentified, id)
}

// Counts returns the number of inserted items and of extracted records.
func (l *Ledger) Counts() (inserted, extracted int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	inserted = len(l.inserted)
	extracted = len(l.unidentified)
	for _, n := range l.extracted {
		extracted += n
	}
	return inserted, extracted
}

// Verify returns an *errors.AuditError when an inserted item was never
// extracted, an item was extracted more than once, or a consumer saw a
// producer's items out of insertion order. It returns nil otherwise.
func (l *Ledger) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	extracted := make(map[string]int, len(l.extracted))
	for tag, n := range l.extracted {
		extracted[tag] = n
	}
	for _, id := range l.unidentified {
		// Unknown IDs were never inserted and count as extracted under the ID.
		if tag, ok := l.ids[id]; ok {
			extracted[tag]++
		} else {
			extracted[id]++
		}
	}

	audit := &errors.AuditError{
		OutOfOrder: append([]string(nil), l.outOfOrder...),
	}
	for tag := range l.inserted {
		if extracted[tag] == 0 {
			audit.Missing = append(audit.Missing, tag)
		}
	}
	for tag, n := range extracted {
		if n > 1 {
			audit.Duplicated = append(audit.Duplicated, tag)
		}
	}

	if audit.Empty() {
		return nil
	}
	sort.Strings(audit.Missing)
	sort.Strings(audit.Duplicated)
	return audit
}
