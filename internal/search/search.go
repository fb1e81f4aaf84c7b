// Package search indexes maintenance audit log entries in Elasticsearch and
// serves full-text queries over them.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/stratos-aero/stratos/internal/config"
	"github.com/stratos-aero/stratos/internal/models"
)

const LogIndex = "maintenance_log"

func NewClient(cfg *config.Config) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}
	return client, nil
}

// IndexLogEntry stores one audit entry under its own id.
func IndexLogEntry(ctx context.Context, es *elasticsearch.Client, entry *models.MaintenanceLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	res, err := es.Index(
		LogIndex,
		bytes.NewReader(data),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(entry.ID.String()),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index log entry: %s", res.Status())
	}
	return nil
}

// SearchLogs runs a fuzzy multi-field query over the audit trail.
func SearchLogs(ctx context.Context, es *elasticsearch.Client, query string, from, size int) (int64, []models.MaintenanceLogEntry, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"aircraftRegistrationNumber^2", "performedBy^2", "changes", "action"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(LogIndex),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.MaintenanceLogEntry `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	entries := make([]models.MaintenanceLogEntry, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		entries[i] = hit.Source
	}
	return r.Hits.Total.Value, entries, nil
}
