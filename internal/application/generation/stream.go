package generation

import (
	"strings"

	gen "github.com/legisequity/bloggen/internal/domain/generation"
)

type streamState int

const (
	stateNormal streamState = iota
	stateThinking
)

// StreamConsumer separates a provider stream into thinking output and the
// final payload. It is a two-state machine: the configured start tag flips
// NORMAL to THINKING, the end tag flips back and flushes the buffered
// thought as one event. While THINKING each chunk is also emitted
// immediately, so the caller sees per-chunk deltas and the assembled
// thought; the UI live-typing effect depends on both.
//
// Every chunk, tags included, accumulates into the content buffer; Final
// strips the thinking region by taking the substring after the last end
// tag. With no tags configured all content is final and no thinking events
// are emitted.
type StreamConsumer struct {
	startTag string
	endTag   string
	state    streamState
	content  strings.Builder
	thought  strings.Builder
	emit     gen.Emitter
}

func NewStreamConsumer(startTag, endTag string, emit gen.Emitter) *StreamConsumer {
	return &StreamConsumer{startTag: startTag, endTag: endTag, emit: emit}
}

func (c *StreamConsumer) tagged() bool { return c.startTag != "" && c.endTag != "" }

// Feed processes one provider chunk. Tags are matched per chunk; providers
// deliver them as whole tokens.
func (c *StreamConsumer) Feed(chunk string) {
	if chunk == "" {
		return
	}
	c.content.WriteString(chunk)
	if !c.tagged() {
		return
	}

	switch {
	case strings.Contains(chunk, c.startTag):
		c.state = stateThinking
		c.thought.Reset()
	case strings.Contains(chunk, c.endTag):
		c.state = stateNormal
		if t := strings.TrimSpace(c.thought.String()); t != "" {
			c.emit(gen.ThinkingEvent(t))
		}
		c.thought.Reset()
	case c.state == stateThinking:
		c.thought.WriteString(chunk)
		c.emit(gen.ThinkingEvent(chunk))
	}
}

// Final returns the payload to parse: everything after the last end tag, or
// the whole accumulated content when no tags are configured.
func (c *StreamConsumer) Final() string {
	s := c.content.String()
	if c.tagged() {
		if i := strings.LastIndex(s, c.endTag); i >= 0 {
			s = s[i+len(c.endTag):]
		}
	}
	return strings.TrimSpace(s)
}
