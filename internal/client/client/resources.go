package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Kind names a REST resource collection under /api.
type Kind string

const (
	KindScenario   Kind = "scenario"
	KindUser       Kind = "user"
	KindModel      Kind = "model"
	KindVoice      Kind = "voice"
	KindIssue      Kind = "issue"
	KindTranscript Kind = "transcript"
)

// Record is one resource as returned by the API.
type Record map[string]any

// ID returns the record identifier (the API uses "_id", some views "id").
func (r Record) ID() string {
	for _, k := range []string{"_id", "id"} {
		if v, ok := r[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Resources is the resource surface consumed by the views.
type Resources interface {
	List(ctx context.Context, kind Kind) ([]Record, error)
	Get(ctx context.Context, kind Kind, id string) (Record, error)
}

// ResourceClient reads platform resources through an authenticated client.
type ResourceClient struct {
	baseURL string
	http    *http.Client
}

var _ Resources = (*ResourceClient)(nil)

func NewResourceClient(baseURL string, authenticated *http.Client) *ResourceClient {
	return &ResourceClient{baseURL: baseURL, http: authenticated}
}

func (c *ResourceClient) List(ctx context.Context, kind Kind) ([]Record, error) {
	var out []Record
	if err := doJSON(ctx, c.http, http.MethodGet, c.baseURL, "/api/"+string(kind), nil, &out); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return out, nil
}

func (c *ResourceClient) Get(ctx context.Context, kind Kind, id string) (Record, error) {
	if id == "" || strings.ContainsAny(id, "/?#") {
		return nil, fmt.Errorf("get %s: invalid id %q", kind, id)
	}
	var out Record
	if err := doJSON(ctx, c.http, http.MethodGet, c.baseURL, "/api/"+string(kind)+"/"+id, nil, &out); err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return out, nil
}
