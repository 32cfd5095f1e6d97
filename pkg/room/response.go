package room

import "trickmatch-server/pkg/match"

// KeyMatchState is the key of a message carrying the state of a match
const KeyMatchState = "matchState"

// Response is the envelope of every message pushed to a client
type Response struct {
	Key  string      `json:"key"`
	Data interface{} `json:"data,omitempty"`
}

// NewMatchStateResponse wraps a match summary
func NewMatchStateResponse(summary *match.Summary) *Response {
	return &Response{
		Key:  KeyMatchState,
		Data: summary,
	}
}
