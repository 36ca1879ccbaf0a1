package mygene

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSymbolsBatches(t *testing.T) {
	var batches [][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs     []string `json:"ids"`
			Species string   `json:"species"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req.Species != "human" {
			t.Errorf("species = %q, expected human", req.Species)
		}
		batches = append(batches, req.IDs)

		var resp []map[string]string
		for _, id := range req.IDs {
			if id == "999999" {
				// Unknown IDs come back without a symbol field.
				resp = append(resp, map[string]string{"_id": id})
				continue
			}
			resp = append(resp, map[string]string{"_id": id, "symbol": "SYM" + id})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL
	c.BatchSize = 2

	got, err := c.Symbols(context.Background(), []string{"1", "2", "3", "999999"}, "human")
	if err != nil {
		t.Fatal(err)
	}

	if len(batches) != 2 {
		t.Fatalf("expected 2 batches of size <= 2, got %d", len(batches))
	}
	if got["1"] != "SYM1" || got["3"] != "SYM3" {
		t.Fatalf("unexpected mapping: %+v", got)
	}
	if got["999999"] != "" {
		t.Fatalf("unknown IDs must map to the empty string: %+v", got)
	}
}

func TestReadLookup(t *testing.T) {
	got, err := ReadLookup(strings.NewReader("9636\tISG15\n81796\tSLCO1B3\n"), '\t')
	if err != nil {
		t.Fatal(err)
	}
	if got["9636"] != "ISG15" || got["81796"] != "SLCO1B3" {
		t.Fatalf("unexpected lookup: %+v", got)
	}
}
