package api

import (
	"encoding/json"
	"testing"
)

func TestTimestampLayouts(t *testing.T) {
	tests := []struct {
		in       string
		wantYear int
	}{
		{`"2024-05-06T07:08:09Z"`, 2024},
		{`"2023-05-06T07:08:09.123456"`, 2023},
		{`"2022-05-06 07:08:09"`, 2022},
		{`"yesterday"`, 1},
		{`null`, 1},
		{`12345`, 1},
	}
	for _, tt := range tests {
		var env Envelope[any]
		if err := json.Unmarshal([]byte(`{"status":200,"timestamp":`+tt.in+`}`), &env); err != nil {
			t.Fatalf("%s: unexpected error %v", tt.in, err)
		}
		if env.Timestamp.Year() != tt.wantYear {
			t.Fatalf("%s: year = %d, want %d", tt.in, env.Timestamp.Year(), tt.wantYear)
		}
	}
}

func TestBusinessFailure(t *testing.T) {
	tests := map[int]bool{0: false, 200: false, 201: false, 299: false, 199: true, 400: true, 500: true}
	for status, want := range tests {
		if got := (rawEnvelope{Status: status}).businessFailure(); got != want {
			t.Fatalf("status %d: got %v want %v", status, got, want)
		}
	}
}
