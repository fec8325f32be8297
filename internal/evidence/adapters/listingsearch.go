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
	listingSearchSource = "listing_search"
	listingSearchWeight = 0.6
)

// ListingSearchAdapter queries a business-listing search index (the public
// web presence of the business). It is the primary of the fallback group
// that ends in plain web search.
type ListingSearchAdapter struct {
	baseURL string
	client  *http.Client
}

func NewListingSearchAdapter(baseURL string, timeout time.Duration) *ListingSearchAdapter {
	return &ListingSearchAdapter{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

func (a *ListingSearchAdapter) Name() string        { return listingSearchSource }
func (a *ListingSearchAdapter) Weight() float64     { return listingSearchWeight }
func (a *ListingSearchAdapter) Authoritative() bool { return false }

type listingSearchResponse struct {
	Results []struct {
		Name       string   `json:"name"`
		Phone      string   `json:"phone"`
		Address    string   `json:"address"`
		Website    string   `json:"website"`
		Categories []string `json:"categories"`
	} `json:"results"`
}

func (a *ListingSearchAdapter) Query(ctx context.Context, rec listing.Record) evidence.Entry {
	if strings.TrimSpace(rec.Name) == "" {
		return evidence.NotFound(listingSearchSource, listingSearchWeight, false)
	}

	endpoint := fmt.Sprintf("%s/search?name=%s&region=%s",
		a.baseURL, url.QueryEscape(rec.Name), url.QueryEscape(rec.Address.Region))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return evidence.Errored(listingSearchSource, listingSearchWeight, false, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return evidence.Errored(listingSearchSource, listingSearchWeight, false, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return evidence.Errored(listingSearchSource, listingSearchWeight, false,
			fmt.Errorf("listing search returned status %d", resp.StatusCode))
	}

	var body listingSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return evidence.Errored(listingSearchSource, listingSearchWeight, false,
			fmt.Errorf("decode listing search response: %w", err))
	}
	if len(body.Results) == 0 {
		return evidence.NotFound(listingSearchSource, listingSearchWeight, false)
	}

	// The index returns results ranked by relevance; the top hit is the
	// candidate listing.
	top := body.Results[0]
	fields := map[listing.Field]string{
		listing.FieldName: NormalizeName(top.Name),
	}
	if top.Phone != "" {
		fields[listing.FieldPhone] = NormalizePhone(top.Phone)
	}
	if top.Address != "" {
		fields[listing.FieldAddress] = top.Address
	}
	if top.Website != "" {
		fields[listing.FieldWebsite] = NormalizeWebsite(top.Website)
	}
	if len(top.Categories) > 0 {
		fields[listing.FieldServices] = strings.Join(top.Categories, ", ")
	}
	return evidence.Found(listingSearchSource, listingSearchWeight, false, fields)
}
