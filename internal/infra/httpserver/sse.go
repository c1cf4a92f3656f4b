package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	gen "github.com/legisequity/bloggen/internal/domain/generation"
)

// sseEmitter writes pipeline events as server-sent events. Each event is a
// single JSON data frame flushed immediately so the client sees progress as
// it happens.
func sseEmitter(w http.ResponseWriter, flusher http.Flusher) gen.Emitter {
	return func(ev gen.Event) {
		payload, err := json.Marshal(ev)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
}
