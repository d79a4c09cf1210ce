package application

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
)

// esStub answers index and search calls like a single-node cluster.
type esStub struct {
	mu       sync.Mutex
	docs     map[string]string
	lastBody string
	fail     bool
}

func (s *esStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	body, _ := io.ReadAll(r.Body)
	s.lastBody = string(body)

	if s.fail {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"search_phase_execution_exception"},"status":500}`))
		return
	}
	switch {
	case strings.Contains(r.URL.Path, "/_doc/"):
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		s.docs[id] = string(body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	case strings.HasSuffix(r.URL.Path, "/_search"):
		var hits []string
		for id, doc := range s.docs {
			hits = append(hits, `{"_id":"`+id+`","_source":`+doc+`}`)
		}
		_, _ = w.Write([]byte(`{"hits":{"hits":[` + strings.Join(hits, ",") + `]}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{}`))
	}
}

func newDirectory(t *testing.T) (*ProfileDirectory, *esStub) {
	t.Helper()
	stub := &esStub{docs: map[string]string{}}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewProfileDirectory(es, "profiles", nil), stub
}

func TestDirectoryIndexAndSearch(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	d, stub := newDirectory(t)

	require.NoError(t, d.IndexProfile(ctx, profileIn("u1", orgA, entity.RoleTeacher)))
	a.Contains(stub.docs, "u1")

	hits, err := d.Search(ctx, orgA.ID, "user", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	a.Equal("u1", hits[0]["id"])
	a.Equal(orgA.ID, hits[0]["organization_id"])

	var q map[string]any
	require.NoError(t, json.Unmarshal([]byte(stub.lastBody), &q))
	a.EqualValues(10, q["size"])
	filter := q["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	a.Equal(orgA.ID, filter[0].(map[string]any)["term"].(map[string]any)["organization_id"])
}

func TestDirectoryErrorResponses(t *testing.T) {
	ctx := context.Background()
	d, stub := newDirectory(t)
	stub.fail = true

	_, err := d.Search(ctx, orgA.ID, "x", 5)
	assert.Error(t, err)
	assert.Error(t, d.IndexProfile(ctx, profileIn("u1", orgA, entity.RoleTeacher)))
}

func TestDisabledDirectory(t *testing.T) {
	ctx := context.Background()
	var d *ProfileDirectory
	assert.NoError(t, d.IndexProfile(ctx, profileIn("u1", orgA, entity.RoleTeacher)))
	hits, err := NewProfileDirectory(nil, "profiles", nil).Search(ctx, orgA.ID, "x", 5)
	assert.NoError(t, err)
	assert.Empty(t, hits)
}
