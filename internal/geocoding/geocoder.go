package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	cacheFileName  = "geocode_cache.json"
	userAgent      = "HomeVal Property Evaluator/1.0"
)

// ErrNoResults is returned when the address could not be resolved
var ErrNoResults = errors.New("no geocoding results")

// Location is a resolved address
type Location struct {
	Latitude     float64 `json:"lat"`
	Longitude    float64 `json:"lon"`
	Neighborhood string  `json:"neighborhood,omitempty"`
	City         string  `json:"city,omitempty"`
	Address      string  `json:"address,omitempty"`
}

type Geocoder struct {
	logger    *logrus.Logger
	cacheDir  string
	cache     map[string]Location
	cacheLock sync.RWMutex
	client    *http.Client
	baseURL   string
	limiter   *rate.Limiter
}

type Option func(*Geocoder)

// WithBaseURL points the geocoder at another Nominatim instance
func WithBaseURL(baseURL string) Option {
	return func(g *Geocoder) {
		g.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithRateLimit replaces the default one request per second limit
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(g *Geocoder) {
		g.limiter = rate.NewLimiter(limit, burst)
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(g *Geocoder) {
		g.client = client
	}
}

// NewGeocoder creates a Nominatim geocoder. Results are cached in memory and,
// when cacheDir is set, persisted there as JSON.
func NewGeocoder(logger *logrus.Logger, cacheDir string, opts ...Option) *Geocoder {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	g := &Geocoder{
		logger:   logger,
		cacheDir: cacheDir,
		cache:    make(map[string]Location),
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  DefaultBaseURL,
		// Nominatim usage policy allows one request per second
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(g)
	}

	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			logger.WithError(err).Warn("Could not create geocode cache directory")
		}
		g.loadCache()
	}

	return g
}

func (g *Geocoder) loadCache() {
	cacheFile := filepath.Join(g.cacheDir, cacheFileName)
	data, err := os.ReadFile(cacheFile)
	if err != nil {
		if !os.IsNotExist(err) {
			g.logger.Warnf("Could not load geocode cache: %v", err)
		}
		return
	}

	if err := json.Unmarshal(data, &g.cache); err != nil {
		g.logger.Errorf("Failed to parse geocode cache: %v", err)
		return
	}

	g.logger.Infof("Loaded %d cached addresses", len(g.cache))
}

func (g *Geocoder) saveCache() {
	if g.cacheDir == "" {
		return
	}

	g.cacheLock.RLock()
	data, err := json.Marshal(g.cache)
	g.cacheLock.RUnlock()
	if err != nil {
		g.logger.Errorf("Failed to marshal geocode cache: %v", err)
		return
	}

	cacheFile := filepath.Join(g.cacheDir, cacheFileName)
	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		g.logger.Errorf("Failed to save geocode cache: %v", err)
		return
	}

	g.logger.Debug("Saved geocode cache to disk")
}

type nominatimResponse []struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Neighbourhood string `json:"neighbourhood"`
		Suburb        string `json:"suburb"`
		CityDistrict  string `json:"city_district"`
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
	} `json:"address"`
}

func cacheKey(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

// Geocode resolves a free-form address to coordinates and a neighbourhood
func (g *Geocoder) Geocode(ctx context.Context, address string) (*Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("empty address")
	}
	key := cacheKey(address)

	g.cacheLock.RLock()
	if loc, ok := g.cache[key]; ok {
		g.cacheLock.RUnlock()
		g.logger.WithFields(logrus.Fields{
			"address":   address,
			"latitude":  loc.Latitude,
			"longitude": loc.Longitude,
			"source":    "cache",
		}).Debug("Found coordinates in cache")
		return &loc, nil
	}
	g.cacheLock.RUnlock()

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	g.logger.WithField("address", address).Info("Geocoding address with Nominatim")

	params := url.Values{
		"q":              []string{address},
		"format":         []string{"json"},
		"limit":          []string{"1"},
		"addressdetails": []string{"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).WithField("address", address).Error("Geocoding request failed")
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result nominatimResponse
	if err := json.Unmarshal(body, &result); err != nil {
		g.logger.WithError(err).WithField("address", address).Error("Failed to parse response")
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result) == 0 {
		g.logger.WithField("address", address).Warn("No results found")
		return nil, fmt.Errorf("%w for address: %s", ErrNoResults, address)
	}

	r := result[0]
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", r.Lon, err)
	}

	loc := Location{
		Latitude:     lat,
		Longitude:    lon,
		Neighborhood: firstNonEmpty(r.Address.Neighbourhood, r.Address.Suburb, r.Address.CityDistrict, localityFromAddress(address)),
		City:         firstNonEmpty(r.Address.City, r.Address.Town, r.Address.Village),
		Address:      r.DisplayName,
	}

	g.logger.WithFields(logrus.Fields{
		"address":   address,
		"latitude":  lat,
		"longitude": lon,
		"source":    "nominatim",
	}).Info("Successfully geocoded address")

	g.cacheLock.Lock()
	g.cache[key] = loc
	g.cacheLock.Unlock()

	g.saveCache()

	return &loc, nil
}

// localityFromAddress returns the second to last comma separated part of an
// address, usually the city
func localityFromAddress(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-2])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
