package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

// --- Query Parameter Tests ---

func TestQueryInt(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/api/v1/executions", 50},
		{"/api/v1/executions?limit=10", 10},
		{"/api/v1/executions?limit=0", 0},
		{"/api/v1/executions?limit=-5", 50},
		{"/api/v1/executions?limit=abc", 50},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		if got := queryInt(r, "limit", 50); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.url, tt.want, got)
		}
	}
}

func TestQueryLimit_CapsPageSize(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/api/v1/executions", defaultListLimit},
		{"/api/v1/executions?limit=100", maxListLimit},
		{"/api/v1/executions?limit=101", maxListLimit},
		{"/api/v1/executions?limit=100000", maxListLimit},
		{"/api/v1/executions?limit=25", 25},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		if got := queryLimit(r); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.url, tt.want, got)
		}
	}
}

// --- List Response Tests ---

func TestList_CountIsPageLength(t *testing.T) {
	w := httptest.NewRecorder()
	data := []string{"a", "b", "c"}

	List(w, data, len(data))

	var resp struct {
		Data  []string `json:"data"`
		Count int      `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("count should equal page length, got %d", resp.Count)
	}
	if len(resp.Data) != 3 {
		t.Errorf("expected 3 items, got %d", len(resp.Data))
	}
}

func TestList_EmptyPage(t *testing.T) {
	w := httptest.NewRecorder()

	List(w, []string{}, 0)

	var resp map[string]json.RawMessage
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if string(resp["count"]) != "0" {
		t.Errorf("empty page should report count 0, got %s", resp["count"])
	}
}
