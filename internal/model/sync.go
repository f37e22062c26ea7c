package model

// SyncError records one recoverable failure inside a sync pass. Stage names
// the pipeline step that failed (fetch, persist, account-update, token, list).
type SyncError struct {
	MessageID string `json:"message_id,omitempty"`
	Stage     string `json:"stage"`
	Message   string `json:"message"`
}

// SyncReport summarizes one account's sync pass. Processed counts every
// message ref the listing returned; Imported counts the subset newly
// persisted this pass.
type SyncReport struct {
	AccountID string      `json:"account_id"`
	Processed int         `json:"processed"`
	Imported  int         `json:"imported"`
	Errors    []SyncError `json:"errors,omitempty"`
}

func (r *SyncReport) AddError(messageID, stage string, err error) {
	r.Errors = append(r.Errors, SyncError{MessageID: messageID, Stage: stage, Message: err.Error()})
}
