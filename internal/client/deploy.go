package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	v1 "fde/api/v1"
	"fde/internal/deployconfig"
)

const (
	sseReconnectBase = 1 * time.Second
	sseReconnectCap  = 10 * time.Second
	sseReconnectJit  = 500 * time.Millisecond
	maxSSEReconnects = 5
)

// StreamEvent mirrors one SSE frame, decoded far enough for the CLI to
// print a line and decide whether the stream has reached a terminal state.
type StreamEvent struct {
	ID    uint64
	Event string
	Data  string
}

// RunDeploy triggers POST /deploy (spec §4.6). When stream is false it
// blocks for the synchronous result; when true it drives the SSE reconnect
// loop described in spec §4.6.5/§4.6.6 and calls onEvent for every frame,
// falling back to GET /deploy/status once reconnect attempts are
// exhausted.
func (c *Client) RunDeploy(ctx context.Context, env *deployconfig.Environment, stream bool, onEvent func(StreamEvent)) (*v1.DeploySyncResponse, error) {
	if !stream {
		var resp v1.DeploySyncResponse
		if err := c.doJSON(ctx, "POST", "/deploy", v1.DeployRequest{Env: env.Name, Stream: false}, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}
	return nil, c.streamDeploy(ctx, env, onEvent)
}

func (c *Client) streamDeploy(ctx context.Context, env *deployconfig.Environment, onEvent func(StreamEvent)) error {
	var lastEventID uint64
	var lastErr error

	for attempt := 0; attempt <= maxSSEReconnects; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sseBackoffDelay(attempt)):
			}
		}

		terminal, err := c.openStream(ctx, env, lastEventID, func(ev StreamEvent) {
			lastEventID = ev.ID
			onEvent(ev)
		})
		if err == nil {
			return nil
		}
		lastErr = err
		if terminal && !isStatus(err, 409) {
			return err
		}
	}

	status, statusErr := c.deployStatus(ctx, env)
	if statusErr != nil {
		return fmt.Errorf("client: sse reconnects exhausted, status query also failed: %w (last stream error: %v)", statusErr, lastErr)
	}
	if status.LastResult != nil {
		onEvent(StreamEvent{
			ID:    0,
			Event: terminalEventName(status.LastResult.Success),
			Data:  fmt.Sprintf(`{"success":%v,"exitCode":%d}`, status.LastResult.Success, status.LastResult.ExitCode),
		})
	}
	return nil
}

// sseBackoffDelay is the SSE reconnect analogue of the chunk retry backoff
// in upload.go: same exponential-plus-jitter shape, its own constants per
// spec §4.6.5.
func sseBackoffDelay(attempt int) time.Duration {
	delay := sseReconnectBase * time.Duration(1<<uint(attempt))
	if delay > sseReconnectCap {
		delay = sseReconnectCap
	}
	return delay + time.Duration(rand.Int63n(int64(sseReconnectJit)))
}

func terminalEventName(success bool) string {
	if success {
		return "done"
	}
	return "error"
}

func (c *Client) deployStatus(ctx context.Context, env *deployconfig.Environment) (*v1.DeployStatusResponse, error) {
	path := "/deploy/status?env=" + env.Name
	req, err := c.newRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result v1.DeployStatusResponse
	if err := c.decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// openStream reads frames until the connection drops or a terminal event
// (done/error) arrives. The bool return reports whether a genuinely
// terminal, non-retryable condition was hit (e.g. a 409 on the very first
// attempt, which reconnecting will not fix since no stream was started).
func (c *Client) openStream(ctx context.Context, env *deployconfig.Environment, lastEventID uint64, onEvent func(StreamEvent)) (terminal bool, err error) {
	path := "/deploy"
	req, buildErr := c.newRequest(ctx, "POST", path, strings.NewReader(mustMarshalDeployRequest(env)))
	if buildErr != nil {
		return true, buildErr
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if lastEventID > 0 {
		req.Header.Set("Last-Event-ID", strconv.FormatUint(lastEventID, 10))
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return false, doErr
	}
	defer resp.Body.Close()

	if resp.StatusCode == 409 {
		return false, &apiError{StatusCode: 409, Message: "deploy gated (running or cooling down)"}
	}
	if resp.StatusCode >= 400 {
		return true, c.decode(resp, nil)
	}

	reachedTerminal := false
	scanErr := scanSSE(resp.Body, func(ev StreamEvent) {
		onEvent(ev)
		if ev.Event == "done" || ev.Event == "error" {
			reachedTerminal = true
		}
	})
	if reachedTerminal {
		return true, nil
	}
	if scanErr != nil {
		return false, scanErr
	}
	return false, fmt.Errorf("client: sse stream closed before a terminal event")
}

func mustMarshalDeployRequest(env *deployconfig.Environment) string {
	return fmt.Sprintf(`{"env":%q,"stream":true}`, env.Name)
}

// scanSSE parses the text/event-stream wire format: id/event/data lines
// separated by blank lines.
func scanSSE(body io.Reader, onEvent func(StreamEvent)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var current StreamEvent
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if current.Event != "" {
				onEvent(current)
				current = StreamEvent{}
			}
		case strings.HasPrefix(line, "id:"):
			id, _ := strconv.ParseUint(strings.TrimSpace(line[len("id:"):]), 10, 64)
			current.ID = id
		case strings.HasPrefix(line, "event:"):
			current.Event = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			current.Data = strings.TrimSpace(line[len("data:"):])
		}
	}
	return scanner.Err()
}
