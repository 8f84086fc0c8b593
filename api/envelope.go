package api

import (
	"bytes"
	"encoding/json"
	"time"
)

// Envelope is the uniform response wrapper used by every backend endpoint.
type Envelope[T any] struct {
	Data      T         `json:"data"`
	Message   string    `json:"message"`
	Status    int       `json:"status"`
	Timestamp Timestamp `json:"timestamp"`
}

// rawEnvelope decodes the envelope fields that drive error classification without
// committing to a payload type.
type rawEnvelope struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// businessFailure reports whether a 2xx response carries a failing status code.
func (e rawEnvelope) businessFailure() bool {
	return e.Status != 0 && (e.Status < 200 || e.Status > 299)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp is the envelope's server time. The backend emits it with and without
// a zone; values in no known layout decode to the zero time rather than failing
// the whole response.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
