package audit

import (
	"encoding/json"
	"time"
)

// ISO8601Format is the time format used for journal timestamps.
const ISO8601Format = time.RFC3339Nano

// eventJSON is the on-disk shape of an event. Optional fields are
// pointers so that empty values are omitted.
type eventJSON struct {
	Timestamp       string          `json:"timestamp"`
	RunID           RunID           `json:"runId"`
	EventType       EventType       `json:"eventType"`
	Status          OperationStatus `json:"status"`
	Operation       *string         `json:"operation,omitempty"`
	SourcePath      *string         `json:"sourcePath,omitempty"`
	DestinationPath *string         `json:"destinationPath,omitempty"`
	Bytes           *int64          `json:"bytes,omitempty"`
	Error           *string         `json:"error,omitempty"`
	RunStatus       *RunStatus      `json:"runStatus,omitempty"`
	Summary         *RunSummary     `json:"summary,omitempty"`
}

// MarshalJSON implements json.Marshaler for AuditEvent.
func (e AuditEvent) MarshalJSON() ([]byte, error) {
	ej := eventJSON{
		Timestamp: e.Timestamp.UTC().Format(ISO8601Format),
		RunID:     e.RunID,
		EventType: e.EventType,
		Status:    e.Status,
		Summary:   e.Summary,
	}
	if e.RunStatus != "" {
		ej.RunStatus = &e.RunStatus
	}
	if e.Operation != "" {
		ej.Operation = &e.Operation
	}
	if e.SourcePath != "" {
		ej.SourcePath = &e.SourcePath
	}
	if e.DestinationPath != "" {
		ej.DestinationPath = &e.DestinationPath
	}
	if e.Bytes != 0 {
		ej.Bytes = &e.Bytes
	}
	if e.Error != "" {
		ej.Error = &e.Error
	}
	return json.Marshal(ej)
}

// UnmarshalJSON implements json.Unmarshaler for AuditEvent.
func (e *AuditEvent) UnmarshalJSON(data []byte) error {
	var ej eventJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return err
	}

	t, err := time.Parse(ISO8601Format, ej.Timestamp)
	if err != nil {
		return err
	}

	*e = AuditEvent{
		Timestamp: t,
		RunID:     ej.RunID,
		EventType: ej.EventType,
		Status:    ej.Status,
		Summary:   ej.Summary,
	}
	if ej.RunStatus != nil {
		e.RunStatus = *ej.RunStatus
	}
	if ej.Operation != nil {
		e.Operation = *ej.Operation
	}
	if ej.SourcePath != nil {
		e.SourcePath = *ej.SourcePath
	}
	if ej.DestinationPath != nil {
		e.DestinationPath = *ej.DestinationPath
	}
	if ej.Bytes != nil {
		e.Bytes = *ej.Bytes
	}
	if ej.Error != nil {
		e.Error = *ej.Error
	}
	return nil
}
