package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

// DirectoryMapping is the profiles index mapping. organization_id is a
// keyword so the term filter in directoryQuery matches exactly.
const DirectoryMapping = `{
  "mappings": {
    "properties": {
      "id":              {"type": "keyword"},
      "organization_id": {"type": "keyword"},
      "full_name":       {"type": "text"},
      "email":           {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "role":            {"type": "keyword"},
      "status":          {"type": "keyword"},
      "avatar_url":      {"type": "keyword", "index": false},
      "updated_at":      {"type": "date"}
    }
  }
}`

// ProfileDirectory is the organization-scoped member directory kept in
// Elasticsearch. A nil directory, or one without a client, is disabled:
// indexing is skipped and searches return nothing.
type ProfileDirectory struct {
	ES      *elasticsearch.Client
	Index   string
	Timeout time.Duration
	Logger  *logrus.Logger
}

func NewProfileDirectory(es *elasticsearch.Client, index string, logger *logrus.Logger) *ProfileDirectory {
	return &ProfileDirectory{ES: es, Index: index, Timeout: 3 * time.Second, Logger: logger}
}

func (d *ProfileDirectory) enabled() bool {
	return d != nil && d.ES != nil && d.Index != ""
}

func profileDocument(u *entity.Profile) map[string]any {
	return map[string]any{
		"id":              u.ID,
		"organization_id": u.OrgID(),
		"full_name":       u.FullName,
		"email":           u.Email,
		"role":            u.Role,
		"status":          u.Status,
		"avatar_url":      u.AvatarURL,
		"updated_at":      u.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// IndexProfile writes the profile document under the profile id.
func (d *ProfileDirectory) IndexProfile(ctx context.Context, u *entity.Profile) error {
	if !d.enabled() {
		return nil
	}
	b, err := json.Marshal(profileDocument(u))
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	req := esapi.IndexRequest{Index: d.Index, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(c, d.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index profile %s: %s", u.ID, res.Status())
	}
	return nil
}

// directoryQuery matches name and email inside one organization only.
func directoryQuery(orgID, q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"full_name^2", "email"},
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"organization_id": orgID}},
				},
			},
		},
		"size": size,
	}
}

// Search returns the _source of profiles in orgID matching q.
func (d *ProfileDirectory) Search(ctx context.Context, orgID, q string, size int) ([]map[string]any, error) {
	if !d.enabled() || orgID == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	b, err := json.Marshal(directoryQuery(orgID, q, size))
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	res, err := d.ES.Search(
		d.ES.Search.WithContext(c),
		d.ES.Search.WithIndex(d.Index),
		d.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		if d.Logger != nil {
			d.Logger.WithField("status", res.Status()).WithField("organization_id", orgID).Warn("es search response error")
		}
		return nil, fmt.Errorf("directory search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

var _ repository.ProfileIndexer = (*ProfileDirectory)(nil)
