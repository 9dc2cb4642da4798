package loader

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pedigree/internal/errors"
	"pedigree/internal/extractor"
	"pedigree/internal/index"
)

// HTTPLoader fetches pre-normalized people from a pedigree server
// (GET <base>/people/<id>).
type HTTPLoader struct {
	baseURL string
	client  *http.Client
}

// NewHTTPLoader creates a remote loader. A nil client gets a default one with
// a 30s timeout.
func NewHTTPLoader(baseURL string, client *http.Client) *HTTPLoader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPLoader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (h *HTTPLoader) LoadPerson(ctx context.Context, id string) (*extractor.Person, error) {
	body, err := h.get(ctx, "/people/"+url.PathEscape(id))
	if err != nil {
		return nil, errors.Wrapf(err, "load person %s", id)
	}

	p, err := decodePerson(body)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode person %s", id), errors.ErrLinkUnresolved)
	}
	return p, nil
}

// LoadIndex fetches the id manifest.
func (h *HTTPLoader) LoadIndex(ctx context.Context) (*index.Manifest, error) {
	body, err := h.get(ctx, "/people/index")
	if err != nil {
		return nil, errors.Wrap(err, "load index")
	}
	var m index.Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, errors.Wrap(err, "decode index")
	}
	return &m, nil
}

func (h *HTTPLoader) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+path, nil)
	if err != nil {
		return nil, errors.Mark(err, errors.ErrLinkUnresolved)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Mark(err, errors.ErrLinkUnresolved)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.Mark(errors.Newf("unexpected status %s", resp.Status), errors.ErrLinkUnresolved)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Mark(err, errors.ErrLinkUnresolved)
	}
	return body, nil
}
