package slides

import (
	"errors"
	"fmt"

	"github.com/xpanvictor/liveslides/pkg/realtime"
)

// Ordering errors. The event stream is not ours, so these are logged and skipped.
var (
	ErrMalformedEvent     = errors.New("accumulator: malformed event")
	ErrUnknownResponse    = errors.New("accumulator: unknown response")
	ErrUnknownOutputItem  = errors.New("accumulator: unknown output item")
	ErrUnknownContentPart = errors.New("accumulator: unknown content part")
)

// Accumulator rebuilds whole responses from streamed fragments:
// response -> output items (by index) -> content parts (by index) -> text.
type Accumulator struct {
	responses map[string]*realtime.Response
}

func NewAccumulator() *Accumulator {
	return &Accumulator{responses: make(map[string]*realtime.Response)}
}

// Reset drops every pending response. Called when a recording session starts.
func (a *Accumulator) Reset() {
	a.responses = make(map[string]*realtime.Response)
}

func (a *Accumulator) Len() int {
	return len(a.responses)
}

func (a *Accumulator) Response(id string) (*realtime.Response, bool) {
	r, ok := a.responses[id]
	return r, ok
}

// Apply folds ev into the table. done is true only for a text-done event, in which
// case text is the final text of that part. Events of other kinds are ignored.
func (a *Accumulator) Apply(ev realtime.ServerEvent) (text string, done bool, err error) {
	switch ev.Kind {
	case realtime.EventResponseCreated, realtime.EventResponseDone:
		if ev.Response == nil || ev.Response.ID == "" {
			return "", false, fmt.Errorf("%w: %s without response id", ErrMalformedEvent, ev.Type)
		}
		a.responses[ev.Response.ID] = ev.Response
		return "", false, nil

	case realtime.EventOutputItemAdded, realtime.EventOutputItemDone:
		return "", false, a.setItem(ev)

	case realtime.EventContentPartAdded, realtime.EventContentPartDone:
		return "", false, a.setPart(ev)

	case realtime.EventTextDelta:
		part, err := a.part(ev)
		if err != nil {
			return "", false, err
		}
		part.Text += ev.Delta
		return "", false, nil

	case realtime.EventTextDone:
		part, err := a.part(ev)
		if err != nil {
			return "", false, err
		}
		if part.Text == "" && ev.Text != "" {
			part.Text = ev.Text
		}
		return part.Text, true, nil

	default:
		return "", false, nil
	}
}

func (a *Accumulator) setItem(ev realtime.ServerEvent) error {
	resp, ok := a.responses[ev.ResponseID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownResponse, ev.ResponseID)
	}
	if ev.OutputIndex < 0 {
		return fmt.Errorf("%w: output_index %d", ErrMalformedEvent, ev.OutputIndex)
	}
	item := ev.Item
	if item == nil {
		item = &realtime.Item{}
	}
	for len(resp.Output) <= ev.OutputIndex {
		resp.Output = append(resp.Output, nil)
	}
	resp.Output[ev.OutputIndex] = item
	return nil
}

func (a *Accumulator) setPart(ev realtime.ServerEvent) error {
	item, err := a.item(ev)
	if err != nil {
		return err
	}
	if ev.ContentIndex < 0 {
		return fmt.Errorf("%w: content_index %d", ErrMalformedEvent, ev.ContentIndex)
	}
	part := ev.Part
	if part == nil {
		part = &realtime.ContentPart{}
	}
	for len(item.Content) <= ev.ContentIndex {
		item.Content = append(item.Content, nil)
	}
	item.Content[ev.ContentIndex] = part
	return nil
}

func (a *Accumulator) item(ev realtime.ServerEvent) (*realtime.Item, error) {
	resp, ok := a.responses[ev.ResponseID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResponse, ev.ResponseID)
	}
	if ev.OutputIndex < 0 || ev.OutputIndex >= len(resp.Output) || resp.Output[ev.OutputIndex] == nil {
		return nil, fmt.Errorf("%w: response %q output %d", ErrUnknownOutputItem, ev.ResponseID, ev.OutputIndex)
	}
	return resp.Output[ev.OutputIndex], nil
}

func (a *Accumulator) part(ev realtime.ServerEvent) (*realtime.ContentPart, error) {
	item, err := a.item(ev)
	if err != nil {
		return nil, err
	}
	if ev.ContentIndex < 0 || ev.ContentIndex >= len(item.Content) || item.Content[ev.ContentIndex] == nil {
		return nil, fmt.Errorf("%w: response %q output %d content %d",
			ErrUnknownContentPart, ev.ResponseID, ev.OutputIndex, ev.ContentIndex)
	}
	return item.Content[ev.ContentIndex], nil
}
