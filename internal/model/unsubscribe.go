package model

// UnsubscribeLink is a candidate unsubscribe target found in a message body.
// Links are derived per invocation and never persisted.
type UnsubscribeLink struct {
	URL    string `json:"url"`
	Text   string `json:"text"`
	Method string `json:"method"` // GET or POST
}

// UnsubscribeOutcome is the result of attempting one link.
type UnsubscribeOutcome struct {
	MessageID string `json:"message_id,omitempty"`
	URL       string `json:"url"`
	Success   bool   `json:"success"`
	Method    string `json:"method"` // mailto, browser
	Details   string `json:"details,omitempty"`
	Error     string `json:"error,omitempty"`
	Evidence  []byte `json:"-"` // page screenshot, when captured
}

// UnsubscribeReport aggregates the outcomes for one message.
type UnsubscribeReport struct {
	MessageID string                `json:"message_id"`
	Success   bool                  `json:"success"`
	Results   []*UnsubscribeOutcome `json:"results"`
	Summary   string                `json:"summary"`
}
