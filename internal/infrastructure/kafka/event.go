package kafka

import (
	"fmt"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Поля события catalog.published.
const (
	fieldEventID     = "event_id"
	fieldSource      = "source"
	fieldProducts    = "products"
	fieldFailed      = "failed"
	fieldPublishedAt = "published_at"
)

// encodeEvent сериализует событие в protobuf Struct.
func encodeEvent(event *usecase.CatalogPublishedEvent) ([]byte, error) {
	payload, err := structpb.NewStruct(map[string]any{
		fieldEventID:     event.EventID,
		fieldSource:      event.Source,
		fieldProducts:    event.Products,
		fieldFailed:      event.Failed,
		fieldPublishedAt: event.PublishedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}

	return proto.Marshal(payload)
}

func decodeEvent(data []byte) (*usecase.CatalogPublishedEvent, error) {
	var payload structpb.Struct
	if err := proto.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	fields := payload.GetFields()
	eventID := fields[fieldEventID].GetStringValue()
	if eventID == "" {
		return nil, fmt.Errorf("event without %s", fieldEventID)
	}

	event := &usecase.CatalogPublishedEvent{
		EventID:  eventID,
		Source:   fields[fieldSource].GetStringValue(),
		Products: int(fields[fieldProducts].GetNumberValue()),
		Failed:   int(fields[fieldFailed].GetNumberValue()),
	}

	if raw := fields[fieldPublishedAt].GetStringValue(); raw != "" {
		publishedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", fieldPublishedAt, err)
		}
		event.PublishedAt = publishedAt
	}

	return event, nil
}
