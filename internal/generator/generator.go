// Package generator produces synthetic work items for producer workers.
package generator

import (
	"fmt"
	"strconv"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"go.uber.org/zap"

	"github.com/jittakal/boundedbuffer/pkg/event"
)

// Generator generates fake work items for one producer.
// A Generator is not safe for concurrent use; give each producer its own.
type Generator struct {
	producerID string
	next       int
	faker      faker.Faker
	logger     *zap.Logger
}

// NewGenerator creates a generator for the producer with the given id.
func NewGenerator(producerID int, logger *zap.Logger) *Generator {
	return &Generator{
		producerID: strconv.Itoa(producerID),
		faker:      faker.New(),
		logger:     logger,
	}
}

// Next returns the producer's next item. Sequence numbers start at 0 and
// increase by one per call.
func (g *Generator) Next() cloudevents.Event {
	seq := g.next
	g.next++

	e := cloudevents.NewEvent()
	e.SetSpecVersion(cloudevents.VersionV1)
	e.SetID(uuid.New().String())
	e.SetType(event.EventTypeItemProduced)
	e.SetSource(event.SourcePrefix + g.producerID)
	e.SetTime(time.Now())
	e.SetSubject(fmt.Sprintf("%s#%d", g.producerID, seq))
	e.SetExtension(event.ExtProducerID, g.producerID)
	e.SetExtension(event.ExtSequence, seq)

	data := event.ItemData{
		Label:      g.faker.Lorem().Word(),
		Value:      g.faker.IntBetween(0, 10000),
		Owner:      g.faker.Person().Name(),
		ProducedAt: time.Now(),
	}
	if err := e.SetData(event.ContentTypeJSON, data); err != nil {
		g.logger.Error("Failed to set item data",
			zap.Error(err),
			zap.String("itemId", e.ID()),
		)
	}

	return e
}

// ProducerID returns the id stamped on every generated item.
func (g *Generator) ProducerID() string {
	return g.producerID
}
