package chat

import "github.com/wxveio/wxve-chat/client"

// toolSeparator is appended to the reply text whenever a tool call ends.
const toolSeparator = "\n\n"

// Phase is where a turn is in its lifecycle.
type Phase int

const (
	PhaseIdle      Phase = iota // No turn has been submitted yet
	PhaseSending                // Request issued, waiting for response headers
	PhaseStreaming              // Reading the response body
	PhaseFinalized              // Reply committed
	PhaseFailed                 // Error message committed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	case PhaseStreaming:
		return "streaming"
	case PhaseFinalized:
		return "finalized"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Loading reports whether a turn in this phase is in flight.
func (p Phase) Loading() bool {
	return p == PhaseSending || p == PhaseStreaming
}

// Turn is the in-flight state between submit and finalize.
type Turn struct {
	Phase      Phase
	Text       string
	Charts     []Chart
	ActiveTool string
	ToolActive bool
	// Reason is set when the turn failed.
	Reason string
}

// Loading reports whether the turn is in flight.
func (t Turn) Loading() bool {
	return t.Phase.Loading()
}

// Effect is a side effect requested by a transition.
type Effect interface {
	effect()
}

// Commit appends an assistant message to the store.
type Commit struct {
	Content string
	Charts  []Chart
	Failed  bool
}

func (Commit) effect() {}

// Step applies one stream event to t. Only a streaming turn reacts; in any
// other phase the turn is returned unchanged. Step never mutates the slices
// of its input.
func Step(t Turn, ev client.Event) (Turn, []Effect) {
	if t.Phase != PhaseStreaming {
		return t, nil
	}

	switch e := ev.(type) {
	case client.TextEvent:
		t.Text += e.Content

	case client.ChartEvent:
		charts := make([]Chart, len(t.Charts), len(t.Charts)+1)
		copy(charts, t.Charts)
		t.Charts = append(charts, Chart{Symbol: e.Symbol, HTML: e.HTML})

	case client.ToolStartEvent:
		t.ActiveTool = e.Name
		t.ToolActive = true

	case client.ToolEndEvent:
		t.ActiveTool = ""
		t.ToolActive = false
		t.Text += toolSeparator

	case client.DoneEvent:
		return Turn{Phase: PhaseFinalized}, []Effect{Commit{Content: t.Text, Charts: t.Charts}}

	case client.ErrorEvent:
		return fail(e.Message)
	}
	return t, nil
}

// Fail ends an in-flight turn with reason. Partially streamed text and
// charts are discarded. A turn that is not in flight is returned unchanged.
func Fail(t Turn, reason string) (Turn, []Effect) {
	if !t.Loading() {
		return t, nil
	}
	return fail(reason)
}

func fail(reason string) (Turn, []Effect) {
	return Turn{Phase: PhaseFailed, Reason: reason}, []Effect{Commit{Content: "Error: " + reason, Failed: true}}
}
