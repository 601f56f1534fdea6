// Package event defines the work items that travel through the bounded buffer.
//
// Items are CloudEvents 1.0 events. The producing worker and the position of
// the item in that worker's stream are carried as extension attributes so that
// consumers can audit delivery without decoding the payload.
package event

import (
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/types"
)

// Event type constants
const (
	EventTypeItemProduced = "com.boundedbuffer.item.produced"

	SourcePrefix = "boundedbuffer/producer/"

	ContentTypeJSON = "application/json"

	// Extension attribute names (CloudEvents requires lowercase alphanumerics).
	ExtProducerID = "producerid"
	ExtSequence   = "sequence"
)

// ItemData is the JSON payload of a work item.
type ItemData struct {
	Label      string    `json:"label"`
	Value      int       `json:"value"`
	Owner      string    `json:"owner"`
	ProducedAt time.Time `json:"producedAt"`
}

// Tag identifies an item by its producer and its position in that producer's
// stream.
type Tag struct {
	ProducerID string
	Sequence   int
}

// String returns the tag in the format "producer#sequence".
func (t Tag) String() string {
	return fmt.Sprintf("%s#%d", t.ProducerID, t.Sequence)
}

// TagOf reads the producer and sequence extensions of e.
func TagOf(e cloudevents.Event) (Tag, error) {
	ext := e.Extensions()

	rawProducer, ok := ext[ExtProducerID]
	if !ok {
		return Tag{}, fmt.Errorf("missing extension %q", ExtProducerID)
	}
	producer, err := types.ToString(rawProducer)
	if err != nil {
		return Tag{}, fmt.Errorf("extension %q: %w", ExtProducerID, err)
	}

	rawSeq, ok := ext[ExtSequence]
	if !ok {
		return Tag{}, fmt.Errorf("missing extension %q", ExtSequence)
	}
	seq, err := types.ToInteger(rawSeq)
	if err != nil {
		return Tag{}, fmt.Errorf("extension %q: %w", ExtSequence, err)
	}

	return Tag{ProducerID: producer, Sequence: int(seq)}, nil
}

// Record is an extracted item as seen by a consumer.
type Record struct {
	Event       cloudevents.Event
	Tag         Tag
	ConsumerID  int
	ExtractedAt time.Time
}
