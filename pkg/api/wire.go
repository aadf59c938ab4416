package api

import (
	"encoding/json"
	"errors"
	"time"
)

// Wire format:
//
// Request:
//
//	{"id": <uint64>, "name": <string>, "params": {...},
//	 "sync": <bool>, "needsReply": <bool>, "timeoutMs": <uint32>}
//
// Response:
//
//	{"id": <uint64>, "isResponse": true, "success": <bool>,
//	 "result": {...}, "error": <string, omitted when empty>}
//
// A missing needsReply defaults to the value of sync.

var ErrEmptyName = errors.New("message has no name")

type wireRequest struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Params     Params `json:"params,omitempty"`
	Sync       bool   `json:"sync"`
	NeedsReply *bool  `json:"needsReply,omitempty"`
	TimeoutMs  uint32 `json:"timeoutMs"`
}

type wireResponse struct {
	ID         uint64 `json:"id"`
	IsResponse bool   `json:"isResponse"`
	Success    bool   `json:"success"`
	Result     Params `json:"result"`
	Error      string `json:"error,omitempty"`
}

// MarshalJSON renders the envelope in the wire format, choosing the request
// or response shape based on IsResponse.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.IsResponse {
		return json.Marshal(wireResponse{
			ID:         m.ID,
			IsResponse: true,
			Success:    m.Success,
			Result:     m.Params,
			Error:      m.Error,
		})
	}
	needsReply := m.NeedsReply
	return json.Marshal(wireRequest{
		ID:         m.ID,
		Name:       m.Name,
		Params:     m.Params,
		Sync:       m.Sync,
		NeedsReply: &needsReply,
		TimeoutMs:  m.TimeoutMs,
	})
}

// ParseRequest decodes a wire-format request into an envelope. The
// timestamp is set to now: timeout budgets start when the message enters
// the process, not when the remote peer built it.
func ParseRequest(data []byte) (Message, error) {
	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return Message{}, err
	}
	if w.Name == "" {
		return Message{}, ErrEmptyName
	}

	msg := Message{
		ID:        w.ID,
		Name:      w.Name,
		Params:    w.Params,
		Sync:      w.Sync,
		TimeoutMs: w.TimeoutMs,
		Timestamp: time.Now(),
	}
	if w.NeedsReply != nil {
		msg.NeedsReply = *w.NeedsReply
	} else {
		msg.NeedsReply = w.Sync
	}
	return msg, nil
}
