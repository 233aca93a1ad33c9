// Package serpapi implements ports.SearchProvider on top of the SerpApi
// Google search endpoint.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"brandguard/internal/domain"
	"brandguard/internal/ports"
)

const DefaultEndpoint = "https://serpapi.com/search.json"

const pageSize = 10

// maxErrorBody bounds how much of an error response is echoed into errors.
const maxErrorBody = 512

type Provider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func New(endpoint, apiKey string, client *http.Client) *Provider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{endpoint: endpoint, apiKey: apiKey, client: client}
}

type response struct {
	Error             string `json:"error"`
	SearchInformation struct {
		TotalResults int64 `json:"total_results"`
	} `json:"search_information"`
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
}

func (p *Provider) Search(ctx context.Context, query, geolocation string, pageOffset int) (ports.SearchPage, error) {
	if p.apiKey == "" {
		return ports.SearchPage{}, fmt.Errorf("serpapi: no api key configured: %w", domain.ErrProviderAuth)
	}
	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", query)
	q.Set("start", strconv.Itoa(pageOffset))
	q.Set("num", strconv.Itoa(pageSize))
	q.Set("api_key", p.apiKey)
	if geolocation != "" {
		q.Set("location", geolocation)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return ports.SearchPage{}, fmt.Errorf("serpapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return ports.SearchPage{}, fmt.Errorf("serpapi: %w", redact(err, p.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.SearchPage{}, fmt.Errorf("serpapi: read body: %w", err)
	}
	var out response
	decodeErr := json.Unmarshal(body, &out)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ports.SearchPage{}, fmt.Errorf("serpapi: status %d: %s: %w", resp.StatusCode, excerpt(out.Error, body), domain.ErrProviderAuth)
	case resp.StatusCode/100 != 2:
		return ports.SearchPage{}, fmt.Errorf("serpapi: status %d: %s", resp.StatusCode, excerpt(out.Error, body))
	case decodeErr != nil:
		return ports.SearchPage{}, fmt.Errorf("serpapi: decode response: %w", decodeErr)
	case out.Error != "":
		if isEmptyResults(out.Error) {
			return ports.SearchPage{}, nil
		}
		if strings.Contains(strings.ToLower(out.Error), "api key") {
			return ports.SearchPage{}, fmt.Errorf("serpapi: %s: %w", out.Error, domain.ErrProviderAuth)
		}
		return ports.SearchPage{}, fmt.Errorf("serpapi: %s", out.Error)
	}

	page := ports.SearchPage{TotalOrganicResults: out.SearchInformation.TotalResults}
	for i, r := range out.OrganicResults {
		if r.Link == "" {
			continue
		}
		page.OrganicResults = append(page.OrganicResults, domain.OrganicResult{
			URL:         r.Link,
			Name:        plainText(r.Title),
			Description: plainText(r.Snippet),
			Rank:        pageOffset + i + 1,
		})
	}
	return page, nil
}

func isEmptyResults(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "hasn't returned any results")
}

// plainText drops HTML highlighting that SERP titles and snippets may carry.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func excerpt(msg string, body []byte) string {
	if msg != "" {
		return msg
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return strings.TrimSpace(string(body))
}

// redact keeps the api key out of transport errors, which embed the URL.
func redact(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
