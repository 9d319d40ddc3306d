// Package realtime speaks the OpenAI Realtime event protocol: typed server events,
// client event constructors, a websocket channel and the SDP offer/answer relay.
package realtime

import (
	"encoding/json"
	"fmt"
)

// EventKind is the closed set of server events the application understands.
// Everything else decodes to EventUnknown.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventSessionCreated
	EventSessionUpdated
	EventTranscriptionCompleted
	EventResponseCreated
	EventResponseDone
	EventOutputItemAdded
	EventOutputItemDone
	EventContentPartAdded
	EventContentPartDone
	EventTextDelta
	EventTextDone
	EventError
)

var kindNames = map[EventKind]string{
	EventUnknown:                "unknown",
	EventSessionCreated:         "session.created",
	EventSessionUpdated:         "session.updated",
	EventTranscriptionCompleted: "transcription.completed",
	EventResponseCreated:        "response.created",
	EventResponseDone:           "response.done",
	EventOutputItemAdded:        "response.output_item.added",
	EventOutputItemDone:         "response.output_item.done",
	EventContentPartAdded:       "response.content_part.added",
	EventContentPartDone:        "response.content_part.done",
	EventTextDelta:              "response.text.delta",
	EventTextDone:               "response.text.done",
	EventError:                  "error",
}

func (k EventKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// wire type -> kind. The GA API renamed text events to output_text; both map to the same kind.
var wireKinds = map[string]EventKind{
	"session.created": EventSessionCreated,
	"session.updated": EventSessionUpdated,
	"conversation.item.input_audio_transcription.completed": EventTranscriptionCompleted,
	"response.created":            EventResponseCreated,
	"response.done":               EventResponseDone,
	"response.output_item.added":  EventOutputItemAdded,
	"response.output_item.done":   EventOutputItemDone,
	"response.content_part.added": EventContentPartAdded,
	"response.content_part.done":  EventContentPartDone,
	"response.text.delta":         EventTextDelta,
	"response.output_text.delta":  EventTextDelta,
	"response.text.done":          EventTextDone,
	"response.output_text.done":   EventTextDone,
	"error":                       EventError,
}

// Response is the tree a streamed model answer is rebuilt into.
type Response struct {
	ID     string  `json:"id"`
	Object string  `json:"object,omitempty"`
	Status string  `json:"status,omitempty"`
	Output []*Item `json:"output,omitempty"`
}

type Item struct {
	ID      string         `json:"id,omitempty"`
	Type    string         `json:"type,omitempty"`
	Role    string         `json:"role,omitempty"`
	Status  string         `json:"status,omitempty"`
	Content []*ContentPart `json:"content,omitempty"`
}

type ContentPart struct {
	Type       string `json:"type,omitempty"`
	Text       string `json:"text,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// APIError is the payload of an "error" event.
type APIError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Param   string `json:"param,omitempty"`
}

func (e *APIError) Error() string {
	if e == nil || e.Message == "" {
		return "realtime: unknown error"
	}
	return "realtime: " + e.Message
}

// ServerEvent is one decoded message from the service. Which fields are set depends on Kind.
type ServerEvent struct {
	Kind         EventKind
	Type         string
	EventID      string
	ResponseID   string
	ItemID       string
	OutputIndex  int
	ContentIndex int
	Delta        string
	Text         string
	Transcript   string
	Response     *Response
	Item         *Item
	Part         *ContentPart
	Error        *APIError
	Raw          json.RawMessage
}

type wireEvent struct {
	Type         string       `json:"type"`
	EventID      string       `json:"event_id"`
	ResponseID   string       `json:"response_id"`
	ItemID       string       `json:"item_id"`
	OutputIndex  int          `json:"output_index"`
	ContentIndex int          `json:"content_index"`
	Delta        string       `json:"delta"`
	Text         string       `json:"text"`
	Transcript   string       `json:"transcript"`
	Response     *Response    `json:"response"`
	Item         *Item        `json:"item"`
	Part         *ContentPart `json:"part"`
	Error        *APIError    `json:"error"`
}

// Decode parses a raw message. Unknown types are not an error; invalid JSON is.
func Decode(data []byte) (ServerEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return ServerEvent{Kind: EventUnknown, Raw: append(json.RawMessage(nil), data...)},
			fmt.Errorf("decode realtime event: %w", err)
	}

	ev := ServerEvent{
		Kind:         wireKinds[w.Type],
		Type:         w.Type,
		EventID:      w.EventID,
		ResponseID:   w.ResponseID,
		ItemID:       w.ItemID,
		OutputIndex:  w.OutputIndex,
		ContentIndex: w.ContentIndex,
		Delta:        w.Delta,
		Text:         w.Text,
		Transcript:   w.Transcript,
		Response:     w.Response,
		Item:         w.Item,
		Part:         w.Part,
		Error:        w.Error,
		Raw:          append(json.RawMessage(nil), data...),
	}
	return ev, nil
}
