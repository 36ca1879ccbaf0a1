// Package mygene resolves Entrez gene IDs to symbols through the
// mygene.info batch API, or through an offline two-column lookup file.
package mygene

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/carbocation/pfx"
)

const DefaultBaseURL = "https://mygene.info/v3/gene"

// The API caps batch requests at 1000 IDs.
const DefaultBatchSize = 1000

type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	BatchSize  int
}

func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		BaseURL:    DefaultBaseURL,
		BatchSize:  DefaultBatchSize,
	}
}

type batchRequest struct {
	IDs     []string `json:"ids"`
	Fields  []string `json:"fields"`
	Species string   `json:"species"`
}

type batchResponse struct {
	ID     string `json:"_id"`
	Symbol string `json:"symbol"`
}

// Symbols maps each ID to its gene symbol. IDs the service does not know
// map to the empty string.
func (c *Client) Symbols(ctx context.Context, ids []string, species string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = ""
	}

	for i := 0; i < len(ids); i += c.BatchSize {
		end := i + c.BatchSize
		if end > len(ids) {
			end = len(ids)
		}

		body, err := json.Marshal(batchRequest{IDs: ids[i:end], Fields: []string{"symbol"}, Species: species})
		if err != nil {
			return nil, pfx.Err(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
		if err != nil {
			return nil, pfx.Err(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, pfx.Err(err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("mygene: batch %d-%d: unexpected status %s", i, end, resp.Status)
		}

		var records []batchResponse
		err = json.NewDecoder(resp.Body).Decode(&records)
		resp.Body.Close()
		if err != nil {
			return nil, pfx.Err(err)
		}

		for _, rec := range records {
			out[rec.ID] = rec.Symbol
		}
	}

	return out, nil
}

// ReadLookup parses an offline two-column (ID, symbol) lookup, either tab-
// or comma-delimited, for runs without network access.
func ReadLookup(r io.Reader, delim rune) (map[string]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	out := make(map[string]string)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}
		if len(rec) < 2 {
			continue
		}
		out[rec[0]] = rec[1]
	}

	return out, nil
}
