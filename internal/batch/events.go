package batch

import "encoding/json"

// Event types carried on the progress stream.
const (
	EventProcessing = "processing"
	EventResult     = "result"
	EventDone       = "done"
)

// Event is one entry in the progress stream. For a batch of N items the
// sequence is exactly Processing(0), Result(0), ..., Processing(N-1),
// Result(N-1), Done. That is 2N+1 events, never interleaved.
type Event struct {
	Type   string
	ID     int
	HasCat bool
}

// Processing announces that an item's invocation is about to begin.
func Processing(id int) Event {
	return Event{Type: EventProcessing, ID: id}
}

// Result reports an item's outcome. Failures arrive as hasCat=false; the
// stream has no error variant.
func Result(id int, hasCat bool) Event {
	return Event{Type: EventResult, ID: id, HasCat: hasCat}
}

// Done terminates the stream.
func Done() Event {
	return Event{Type: EventDone}
}

// MarshalJSON emits exactly the fields the browser contract names: "id" for
// processing and result, "has_cat" only for result.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventResult:
		return json.Marshal(struct {
			Type   string `json:"type"`
			ID     int    `json:"id"`
			HasCat bool   `json:"has_cat"`
		}{e.Type, e.ID, e.HasCat})
	case EventProcessing:
		return json.Marshal(struct {
			Type string `json:"type"`
			ID   int    `json:"id"`
		}{e.Type, e.ID})
	default:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{e.Type})
	}
}

// Sink accepts stream events. A Send error means the transport is gone and
// the run should stop; the runner never retries.
type Sink interface {
	Send(Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event) error

func (f SinkFunc) Send(evt Event) error { return f(evt) }
