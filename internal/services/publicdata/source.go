package publicdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dealflow/internal/config"
	"dealflow/internal/services"
)

// Payload keys shared by every source.
const (
	KeyNewsArticles       = "news_articles"
	KeyFounderProfiles    = "founder_profiles"
	KeyMarketData         = "market_data"
	KeyCompetitorAnalysis = "competitor_analysis"
)

// Source looks up public information about a company and its founders. The
// payload is opaque enrichment consumed by verification.
type Source interface {
	Lookup(ctx context.Context, company string, founders []string) (map[string]any, error)
}

// New selects the configured source.
func New(cfg config.PublicData) Source {
	switch cfg.Mode {
	case config.PublicDataHTTP:
		return NewHTTPSource(cfg.BaseURL, cfg.APIKey, time.Duration(cfg.TimeoutSeconds)*time.Second)
	case config.PublicDataDisabled:
		return Disabled{}
	default:
		return Synthetic{}
	}
}

// Disabled reports services.ErrUnavailable for every lookup.
type Disabled struct{}

// Lookup always fails with services.ErrUnavailable.
func (Disabled) Lookup(context.Context, string, []string) (map[string]any, error) {
	return nil, services.Wrap(services.ErrUnavailable, "public_data_mapping", "lookup", "public data disabled", nil)
}

// HTTPSource posts the company and founders to a JSON lookup endpoint.
type HTTPSource struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPSource constructs an HTTP-backed source.
func NewHTTPSource(endpoint, apiKey string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSource{
		endpoint: strings.TrimSpace(endpoint),
		apiKey:   strings.TrimSpace(apiKey),
		client:   &http.Client{Timeout: timeout},
	}
}

type lookupRequest struct {
	Company  string   `json:"company_name"`
	Founders []string `json:"founders"`
}

// Lookup issues the request and decodes a JSON object response.
func (s *HTTPSource) Lookup(ctx context.Context, company string, founders []string) (map[string]any, error) {
	if s == nil || s.endpoint == "" {
		return nil, services.Wrap(services.ErrConfiguration, "public_data_mapping", "lookup", "public data endpoint not configured", nil)
	}
	if founders == nil {
		founders = []string{}
	}
	body, err := json.Marshal(lookupRequest{Company: company, Founders: founders})
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "public_data_mapping", "encode request", "", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "public_data_mapping", "build request", "", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrTimeout, "public_data_mapping", "lookup", "request cancelled", err)
		}
		return nil, services.Wrap(services.ErrTransient, "public_data_mapping", "lookup", "request failed", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "public_data_mapping", "read response", "", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		marker := services.ErrExternalTool
		if resp.StatusCode == http.StatusNotFound {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "public_data_mapping", "lookup", fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "public_data_mapping", "decode response", "response is not a JSON object", err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

// Synthetic returns deterministic mock enrichment derived from the names it
// is given. It never fails.
type Synthetic struct{}

// Lookup builds the mock payload.
func (Synthetic) Lookup(_ context.Context, company string, founders []string) (map[string]any, error) {
	profiles := make(map[string]any, len(founders))
	for _, founder := range founders {
		name := strings.TrimSpace(founder)
		if name == "" {
			continue
		}
		profiles[name] = map[string]any{
			"linkedin_profile":      "linkedin.com/in/" + strings.ReplaceAll(strings.ToLower(name), " ", "-"),
			"previous_companies":    []any{"TechCorp", "StartupXYZ"},
			"education":             []any{"Stanford University", "MIT"},
			"publications":          5,
			"patents":               2,
			"social_presence_score": 7.5,
		}
	}
	return map[string]any{
		KeyNewsArticles: []any{
			map[string]any{
				"title":     company + " raises Series A funding",
				"source":    "TechCrunch",
				"sentiment": "positive",
				"summary":   "Analysis of " + company + "'s recent funding round",
			},
			map[string]any{
				"title":     company + " launches new product feature",
				"source":    "VentureBeat",
				"sentiment": "neutral",
				"summary":   company + " expands product capabilities",
			},
		},
		KeyFounderProfiles: profiles,
		KeyMarketData: map[string]any{
			"market_size_estimate": 5_000_000_000.0,
			"growth_rate":          0.15,
			"key_trends":           []any{"Digital transformation", "AI adoption"},
			"regulatory_risks":     "Medium",
		},
		KeyCompetitorAnalysis: []any{
			map[string]any{
				"name":            "CompetitorA",
				"funding_raised":  50_000_000.0,
				"employees":       200,
				"market_share":    0.15,
				"differentiation": "Enterprise focus",
			},
			map[string]any{
				"name":            "CompetitorB",
				"funding_raised":  25_000_000.0,
				"employees":       100,
				"market_share":    0.08,
				"differentiation": "SMB market",
			},
		},
	}, nil
}

// Competitors returns the competitor entries of a payload.
func Competitors(payload map[string]any) []any {
	list, _ := payload[KeyCompetitorAnalysis].([]any)
	return list
}

// FounderProfiles returns the founder profile map of a payload.
func FounderProfiles(payload map[string]any) map[string]any {
	profiles, _ := payload[KeyFounderProfiles].(map[string]any)
	return profiles
}
