package jobs

import (
	"encoding/json"
	"fmt"
)

// Job is one unit of background work. Payload is an immutable JSON message.
type Job struct {
	Type    string
	Key     string // de-duplication key; empty disables de-duplication
	Payload json.RawMessage
}

// NewJob marshals payload into a job of the given type.
func NewJob(jobType, key string, payload any) (Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("marshal %s payload: %w", jobType, err)
	}
	return Job{Type: jobType, Key: key, Payload: raw}, nil
}

// Decode unmarshals the payload into v.
func (j Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", j.Type, err)
	}
	return nil
}

// dedupeKey scopes the key by type so unrelated job types never collide.
func (j Job) dedupeKey() string {
	if j.Key == "" {
		return ""
	}
	return j.Type + "/" + j.Key
}
