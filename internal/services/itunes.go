// iTunes Search API implementation of [Catalog]
//
// Response shape based on https://performance-partners.apple.com/search-api
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amjp/internal/models"
	"github.com/desertthunder/amjp/internal/shared"
)

const (
	defaultITunesBaseURL = "https://itunes.apple.com/search"
	defaultCountry       = "jp"
	defaultEntity        = "song"
	defaultTimeout       = 15 * time.Second
)

// ITunesResult is one entry of the search response. Only the fields used for localization are decoded.
type ITunesResult struct {
	TrackName      string `json:"trackName"`
	CollectionName string `json:"collectionName"`
	ArtistName     string `json:"artistName"`
	TrackViewURL   string `json:"trackViewUrl"`
}

// ITunesSearchResponse is the search endpoint's envelope.
type ITunesSearchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []ITunesResult `json:"results"`
}

// ITunesOpts configures an [ITunesService]. Zero values take the defaults.
type ITunesOpts struct {
	BaseURL string
	Country string
	Entity  string
	Limit   int
	Timeout time.Duration
	Client  *http.Client // overrides Timeout when set
	Logger  *log.Logger
}

// ITunesService implements the Catalog interface for the iTunes Search API.
type ITunesService struct {
	baseURL    string
	country    string
	entity     string
	limit      int
	httpClient *http.Client
	logger     *log.Logger
}

// NewITunesService creates a new iTunes Search service instance.
func NewITunesService(opts ITunesOpts) *ITunesService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultITunesBaseURL
	}
	if opts.Country == "" {
		opts.Country = defaultCountry
	}
	if opts.Entity == "" {
		opts.Entity = defaultEntity
	}
	if opts.Limit <= 0 {
		opts.Limit = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &ITunesService{
		baseURL:    opts.BaseURL,
		country:    opts.Country,
		entity:     opts.Entity,
		limit:      opts.Limit,
		httpClient: opts.Client,
		logger:     opts.Logger,
	}
}

// Name returns the service name.
func (s *ITunesService) Name() string {
	return "iTunes Search"
}

// Country returns the storefront searched.
func (s *ITunesService) Country() string {
	return s.country
}

// SearchURL builds the request URL for title and artist.
func (s *ITunesService) SearchURL(title, artist string) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: base URL: %v", shared.ErrInvalidConfig, err)
	}

	q := u.Query()
	q.Set("term", strings.TrimSpace(title+" "+artist))
	q.Set("country", s.country)
	q.Set("entity", s.entity)
	q.Set("limit", strconv.Itoa(s.limit))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Search queries the storefront for title and artist and returns the first result.
func (s *ITunesService) Search(ctx context.Context, title, artist string) (*models.LocalizedMetadata, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(artist) == "" {
		return nil, fmt.Errorf("%w: title and artist are both empty", shared.ErrInvalidInput)
	}

	apiURL, err := s.SearchURL(title, artist)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: itunes search status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var result ITunesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if result.ResultCount == 0 || len(result.Results) == 0 {
		return nil, fmt.Errorf("%w: %q by %q in %s", shared.ErrNoMatch, title, artist, s.country)
	}

	item := result.Results[0]
	return &models.LocalizedMetadata{
		Title:   item.TrackName,
		Album:   item.CollectionName,
		Artist:  item.ArtistName,
		ViewURL: item.TrackViewURL,
	}, nil
}

// Lookup returns the first match for title and artist, or nil when there is none or the request failed.
func (s *ITunesService) Lookup(ctx context.Context, title, artist string) *models.LocalizedMetadata {
	meta, err := s.Search(ctx, title, artist)
	if err != nil {
		if errors.Is(err, shared.ErrNoMatch) {
			s.logger.Debug("no catalog match", "title", title, "artist", artist)
		} else {
			s.logger.Debug("catalog lookup failed", "title", title, "artist", artist, "error", err)
		}
		return nil
	}
	return meta
}
