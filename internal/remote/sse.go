package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

// Subscribe opens the server-sent event stream and invokes onEvent for every
// decoded change event. The returned unsubscribe function closes the stream
// and is safe to call more than once.
func (c *Client) Subscribe(ctx context.Context, onEvent func(models.ChangeEvent)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/events"), nil)
	if err != nil {
		cancel()
		return nil, &TransportError{Op: "subscribe", Err: err}
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream outlives any per-request timeout on the shared client; use
	// a dedicated client with the same jar and cancel through the context.
	streamClient := &http.Client{Jar: c.http.Jar, Transport: c.http.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, &TransportError{Op: "subscribe", Err: err}
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		cancel()
		return nil, c.decodeError(resp, "subscribe")
	}

	go func() {
		defer resp.Body.Close()
		readEvents(resp.Body, onEvent)
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

// readEvents parses the text/event-stream wire format: "data:" lines
// accumulate until a blank line dispatches the event. Comment lines and
// event names are skipped; the payload alone identifies the change.
func readEvents(r io.Reader, onEvent func(models.ChangeEvent)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				dispatch(data.String(), onEvent)
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if data.Len() > 0 {
		dispatch(data.String(), onEvent)
	}
}

func dispatch(payload string, onEvent func(models.ChangeEvent)) {
	var ev models.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Printf("remote: dropping malformed change event: %v", err)
		return
	}
	onEvent(ev)
}
