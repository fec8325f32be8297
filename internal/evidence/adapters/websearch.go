package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"veridex/internal/evidence"
	"veridex/internal/listing"
)

const (
	webSearchSource = "web_search"
	webSearchWeight = 0.3
)

// WebSearchAdapter is the low-reliability fallback: a broad web search
// consulted only when the listing search finds nothing.
type WebSearchAdapter struct {
	baseURL string
	client  *http.Client
}

func NewWebSearchAdapter(baseURL string, timeout time.Duration) *WebSearchAdapter {
	return &WebSearchAdapter{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

func (a *WebSearchAdapter) Name() string        { return webSearchSource }
func (a *WebSearchAdapter) Weight() float64     { return webSearchWeight }
func (a *WebSearchAdapter) Authoritative() bool { return false }

type webSearchResponse struct {
	Hits []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Phone string `json:"phone"`
	} `json:"hits"`
}

func (a *WebSearchAdapter) Query(ctx context.Context, rec listing.Record) evidence.Entry {
	query := strings.TrimSpace(rec.Name + " " + rec.Address.City)
	if query == "" {
		return evidence.NotFound(webSearchSource, webSearchWeight, false)
	}

	endpoint := fmt.Sprintf("%s/search?q=%s", a.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return evidence.Errored(webSearchSource, webSearchWeight, false, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return evidence.Errored(webSearchSource, webSearchWeight, false, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return evidence.Errored(webSearchSource, webSearchWeight, false,
			fmt.Errorf("web search returned status %d", resp.StatusCode))
	}

	var body webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return evidence.Errored(webSearchSource, webSearchWeight, false,
			fmt.Errorf("decode web search response: %w", err))
	}
	if len(body.Hits) == 0 {
		return evidence.NotFound(webSearchSource, webSearchWeight, false)
	}

	top := body.Hits[0]
	fields := map[listing.Field]string{
		listing.FieldName: NormalizeName(top.Title),
	}
	if top.URL != "" {
		fields[listing.FieldWebsite] = NormalizeWebsite(top.URL)
	}
	if top.Phone != "" {
		fields[listing.FieldPhone] = NormalizePhone(top.Phone)
	}
	return evidence.Found(webSearchSource, webSearchWeight, false, fields)
}
