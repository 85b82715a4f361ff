package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// SavePayload is the partial update accepted by Save. Only RefID, Form, TS
// and Terms are applied; the server-managed keys are tolerated so a loaded
// record can be posted back, but their values are ignored.
type SavePayload struct {
	RefID string          `json:"refId"`
	Form  json.RawMessage `json:"form,omitempty"`
	TS    string          `json:"ts,omitempty"`
	Terms *Terms          `json:"terms,omitempty"`

	Locked     json.RawMessage `json:"locked,omitempty"`
	LockedAt   json.RawMessage `json:"lockedAt,omitempty"`
	UnlockedAt json.RawMessage `json:"unlockedAt,omitempty"`
	Version    json.RawMessage `json:"version,omitempty"`
	Events     json.RawMessage `json:"events,omitempty"`
	Metrics    json.RawMessage `json:"metrics,omitempty"`
	Job        json.RawMessage `json:"job,omitempty"`
	History    json.RawMessage `json:"history,omitempty"`
}

// DecodeSavePayload parses a single JSON object and rejects unknown top-level keys.
func DecodeSavePayload(data []byte) (SavePayload, error) {
	var payload SavePayload
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return SavePayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return SavePayload{}, fmt.Errorf("%w: trailing data", ErrInvalidPayload)
	}

	id, err := ValidateRefID(payload.RefID)
	if err != nil {
		return SavePayload{}, err
	}
	payload.RefID = id
	if isJSONNull(payload.Form) {
		payload.Form = nil
	}
	return payload, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
