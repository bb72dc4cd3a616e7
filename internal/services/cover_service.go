package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alimgiray/bookshelf/pkg/config"
	"github.com/alimgiray/bookshelf/pkg/logger"
	"golang.org/x/time/rate"
)

// ErrCoverLookupDegraded marks a cover lookup that could not produce a URL.
// It never leaves CoverService; callers receive a blank URL instead.
var ErrCoverLookupDegraded = errors.New("cover lookup degraded")

// CoverLookup resolves a cover image URL for an ISBN
type CoverLookup interface {
	FetchCoverURL(ctx context.Context, isbn string) string
}

type CoverService struct {
	httpClient   *http.Client
	endpoint     string
	host         string
	apiKey       string
	languageCode string
	limiter      *rate.Limiter
}

type coverResponse struct {
	URL *string `json:"url"`
}

func NewCoverService(cfg config.CoverConfig) *CoverService {
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 1
	}

	return &CoverService{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint:     cfg.URL,
		host:         cfg.Host,
		apiKey:       cfg.APIKey,
		languageCode: cfg.LanguageCode,
		limiter:      rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
	}
}

// FetchCoverURL returns the cover image URL for isbn, or an empty string when
// the lookup fails for any reason.
func (s *CoverService) FetchCoverURL(ctx context.Context, isbn string) string {
	coverURL, err := s.lookup(ctx, isbn)
	if err != nil {
		logger.WithError(err).WithField("isbn", isbn).Warn("Cover lookup failed, using blank cover")
		return ""
	}
	return coverURL
}

func (s *CoverService) lookup(ctx context.Context, isbn string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrCoverLookupDegraded)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCoverLookupDegraded, err)
	}

	query := url.Values{}
	query.Set("languageCode", s.languageCode)
	query.Set("isbn", isbn)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCoverLookupDegraded, err)
	}
	req.Header.Set("X-RapidAPI-Key", s.apiKey)
	req.Header.Set("X-RapidAPI-Host", s.host)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", ErrCoverLookupDegraded, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: cover API returned status %d", ErrCoverLookupDegraded, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %v", ErrCoverLookupDegraded, err)
	}

	var payload coverResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: invalid JSON: %v", ErrCoverLookupDegraded, err)
	}
	if payload.URL == nil || strings.TrimSpace(*payload.URL) == "" {
		return "", fmt.Errorf("%w: response has no url", ErrCoverLookupDegraded)
	}

	return *payload.URL, nil
}
