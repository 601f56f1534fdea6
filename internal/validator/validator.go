// Package validator checks work items after they leave the buffer.
package validator

import (
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/jittakal/boundedbuffer/internal/errors"
	"github.com/jittakal/boundedbuffer/pkg/event"
)

// ItemValidator validates extracted work items.
type ItemValidator struct{}

// NewItemValidator creates a new item validator.
func NewItemValidator() *ItemValidator {
	return &ItemValidator{}
}

// Validate checks the CloudEvents context attributes, the item type and the
// producer/sequence extensions, and returns the item's tag.
func (v *ItemValidator) Validate(e cloudevents.Event) (event.Tag, error) {
	if err := e.Validate(); err != nil {
		return event.Tag{}, &errors.ValidationError{
			EventID: e.ID(),
			Field:   "context",
			Reason:  err.Error(),
		}
	}

	if e.Type() != event.EventTypeItemProduced {
		return event.Tag{}, &errors.ValidationError{
			EventID: e.ID(),
			Field:   "type",
			Reason:  "unexpected type: " + e.Type(),
		}
	}

	tag, err := event.TagOf(e)
	if err != nil {
		return event.Tag{}, &errors.ValidationError{
			EventID: e.ID(),
			Field:   "extensions",
			Reason:  err.Error(),
		}
	}

	if tag.Sequence < 0 {
		return event.Tag{}, &errors.ValidationError{
			EventID: e.ID(),
			Field:   event.ExtSequence,
			Reason:  "must not be negative",
		}
	}

	if e.Source() != event.SourcePrefix+tag.ProducerID {
		return event.Tag{}, &errors.ValidationError{
			EventID: e.ID(),
			Field:   "source",
			Reason:  "does not match producer " + tag.ProducerID,
		}
	}

	return tag, nil
}
