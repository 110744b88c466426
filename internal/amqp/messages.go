package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExportRequest asks a worker to push one saved session to the
// spreadsheet. The worker loads the rows from the progress store, so the
// message only carries the session name.
type ExportRequest struct {
	RequestID string    `json:"request_id"`
	Session   string    `json:"session"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExportRequest creates a request with a fresh ID.
func NewExportRequest(session string) *ExportRequest {
	return &ExportRequest{
		RequestID: uuid.NewString(),
		Session:   session,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportRequestFromJSON decodes and validates a message body.
func ExportRequestFromJSON(data []byte) (*ExportRequest, error) {
	var msg ExportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(msg.RequestID); err != nil {
		return nil, fmt.Errorf("invalid request_id %q: %w", msg.RequestID, err)
	}
	if msg.Session == "" {
		return nil, errors.New("missing session")
	}
	return &msg, nil
}
