package api

import (
	"time"
)

// InfiniteTimeout is the sentinel returned by Message.Remaining when the
// message has no timeout (TimeoutMs == 0).
const InfiniteTimeout = time.Duration(1<<63 - 1)

// Params is a JSON-like tree of message parameters or response results.
// Values follow encoding/json conventions: numbers are float64, nested
// objects are map[string]any, arrays are []any.
type Params map[string]any

// Float returns the float64 value stored under key, or def if the key is
// absent or not a number. Integer values are widened.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Int returns the int value stored under key, or def if the key is absent
// or not a number.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return def
	}
}

// String returns the string value stored under key, or def if absent.
func (p Params) String(key string, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Bool returns the bool value stored under key, or def if absent.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Message is the unified envelope for both requests and responses, told
// apart by IsResponse.
//
// Request fields:
//   - ID: correlation key, unique per engine instance
//   - Name: event or action name
//   - Params: request parameters
//   - Sync: if true, the dispatcher buffers other sync messages while this
//     one is being processed (transport-level; does not block the caller)
//   - NeedsReply: whether a response must be produced at all
//   - TimeoutMs: time from Timestamp until the request is discarded
//     (0 = unbounded)
//   - Timestamp: creation time, set once, never mutated
//
// Response fields (IsResponse == true):
//   - Success: whether the request was handled successfully
//   - Params: result data
//   - Error: error text when Success is false
type Message struct {
	ID         uint64
	Name       string
	Params     Params
	Sync       bool
	NeedsReply bool
	TimeoutMs  uint32
	Timestamp  time.Time

	IsResponse bool
	Success    bool
	Error      string
}

// NewMessage builds a request envelope with the timestamp set to now.
func NewMessage(id uint64, name string, params Params) Message {
	return Message{
		ID:        id,
		Name:      name,
		Params:    params,
		Timestamp: time.Now(),
	}
}

// TimedOut reports whether the message's timeout budget has elapsed.
// Messages with TimeoutMs == 0 never time out.
func (m *Message) TimedOut() bool {
	if m.TimeoutMs == 0 {
		return false
	}
	return time.Since(m.Timestamp) > time.Duration(m.TimeoutMs)*time.Millisecond
}

// Remaining returns the time left until the message times out, never
// negative. Returns InfiniteTimeout when TimeoutMs == 0.
func (m *Message) Remaining() time.Duration {
	if m.TimeoutMs == 0 {
		return InfiniteTimeout
	}
	rem := time.Duration(m.TimeoutMs)*time.Millisecond - time.Since(m.Timestamp)
	if rem < 0 {
		return 0
	}
	return rem
}

// Age returns the time elapsed since the message was created.
func (m *Message) Age() time.Duration {
	return time.Since(m.Timestamp)
}

// NewResponse builds a response envelope correlated to requestID.
func NewResponse(requestID uint64, success bool, result Params, errMsg string) Message {
	return Message{
		ID:         requestID,
		Params:     result,
		Timestamp:  time.Now(),
		IsResponse: true,
		Success:    success,
		Error:      errMsg,
	}
}

// NewTimeoutResponse builds the standard failed response for a request
// whose caller gave up waiting.
func NewTimeoutResponse(requestID uint64) Message {
	return NewResponse(requestID, false, Params{}, "Request timed out")
}
