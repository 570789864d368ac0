// Package ingestion holds the raw-payload audit record.
package ingestion

import "time"

// Collection is the private collection holding audit records of the ingesting tenant.
const Collection = "raw_ingestion_logs"

// Status is the processing outcome of a raw payload.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusInvalid Status = "INVALID"
)

// LogEntry audits one raw payload. ProfileID is empty for invalid payloads.
type LogEntry struct {
	Timestamp float64
	Status    Status
	Payload   map[string]any
	ProfileID string
}

// NewLogEntry stamps an audit record at the given time.
func NewLogEntry(at time.Time, status Status, payload map[string]any, profileID string) LogEntry {
	return LogEntry{
		Timestamp: float64(at.UnixNano()) / 1e9,
		Status:    status,
		Payload:   payload,
		ProfileID: profileID,
	}
}
