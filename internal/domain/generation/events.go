package generation

// EventType discriminates the events sent over the generation stream.
type EventType string

const (
	EventProgress EventType = "progress"
	EventThinking EventType = "thinking"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is the tagged union flowing through a single emitter: progress
// notifications, live thinking output, the terminal completion carrying the
// blog post id, or a terminal error.
type Event struct {
	Type       EventType `json:"type"`
	Progress   int       `json:"progress,omitempty"`
	Message    string    `json:"message,omitempty"`
	Thought    string    `json:"thought,omitempty"`
	BlogPostID string    `json:"blogPostId,omitempty"`
}

// Emitter receives events in order; implementations must not block for long
// since the pipeline emits from the streaming read loop.
type Emitter func(Event)

func ProgressEvent(pct int, msg string) Event {
	return Event{Type: EventProgress, Progress: pct, Message: msg}
}

func ThinkingEvent(thought string) Event {
	return Event{Type: EventThinking, Thought: thought}
}

func CompleteEvent(postID, msg string) Event {
	return Event{Type: EventComplete, Progress: 100, Message: msg, BlogPostID: postID}
}

func ErrorEvent(msg string) Event {
	return Event{Type: EventError, Message: msg}
}
