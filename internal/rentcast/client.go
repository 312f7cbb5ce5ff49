// Package rentcast fetches property records, market statistics and
// comparable sales from the RentCast API.
package rentcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"homeval/server/internal/models"
)

const (
	DefaultBaseURL = "https://api.rentcast.io/v1"
	DataSource     = "rentcast"

	// Assessed value to annual tax conversion when no tax bill is reported
	assessedTaxRate = 0.012
	dateLayout      = "2006-01-02"
)

// Client is a RentCast API client. A client without an API key is disabled
// and every lookup returns nil, nil.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
	now     func() time.Time
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithClock sets the clock used to age comparable sales
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func NewClient(apiKey string, logger *logrus.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type propertyRecord struct {
	FormattedAddress string   `json:"formattedAddress"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	Bedrooms         *float64 `json:"bedrooms"`
	Bathrooms        *float64 `json:"bathrooms"`
	SquareFootage    *int     `json:"squareFootage"`
	YearBuilt        *int     `json:"yearBuilt"`
	LotSize          *int     `json:"lotSize"`
	PropertyType     string   `json:"propertyType"`
	Description      string   `json:"description"`
	HOAFee           *float64 `json:"hoaFee"`
	TaxAssessedValue *float64 `json:"taxAssessedValue"`
	ListingStatus    string   `json:"listingStatus"`
	Price            *float64 `json:"price"`
	LastSalePrice    *float64 `json:"lastSalePrice"`
	LastSaleDate     string   `json:"lastSaleDate"`
	LastListPrice    *float64 `json:"lastListPrice"`
	RentEstimate     *float64 `json:"rentEstimate"`
	DaysOnMarket     *int     `json:"daysOnMarket"`
}

type marketRecord struct {
	Neighborhood       string   `json:"neighborhood"`
	City               string   `json:"city"`
	MedianListPrice    *float64 `json:"medianListPrice"`
	MedianSoldPrice    *float64 `json:"medianSoldPrice"`
	MedianPricePerSqFt *float64 `json:"medianPricePerSqFt"`
	ActiveListings     *int     `json:"activeListings"`
	SoldLast90Days     *int     `json:"soldLast90Days"`
	MedianDaysOnMarket *int     `json:"medianDaysOnMarket"`
	PriceChange12Month *float64 `json:"priceChange12Month"`
	PriceChange5Year   *float64 `json:"priceChange5Year"`
}

// PropertyByAddress returns the property record for an address, or nil when
// the client is disabled or RentCast knows no such property
func (c *Client) PropertyByAddress(ctx context.Context, address string) (*models.PropertyFacts, error) {
	if !c.Enabled() {
		return nil, nil
	}

	var records []propertyRecord
	found, err := c.get(ctx, "/properties", url.Values{"address": []string{address}}, &records)
	if err != nil || !found || len(records) == 0 {
		return nil, err
	}

	return c.toFacts(records[0], address), nil
}

func (c *Client) toFacts(p propertyRecord, address string) *models.PropertyFacts {
	now := c.now()
	facts := &models.PropertyFacts{
		Address:         firstNonEmpty(p.FormattedAddress, address),
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		Beds:            p.Bedrooms,
		Baths:           p.Bathrooms,
		Sqft:            p.SquareFootage,
		YearBuilt:       p.YearBuilt,
		LotSizeSqft:     p.LotSize,
		PropertyType:    firstNonEmpty(p.PropertyType, "Unknown"),
		Description:     p.Description,
		HOAMonthly:      p.HOAFee,
		RentEstimate:    p.RentEstimate,
		DaysOnMarket:    p.DaysOnMarket,
		LastSoldPrice:   p.LastSalePrice,
		SoldPrice:       p.LastSalePrice,
		LastListedPrice: p.LastListPrice,
		Status:          models.ListingOffMarket,
		DataSource:      DataSource,
		FetchedAt:       &now,
	}

	if p.ListingStatus == "Active" {
		facts.Status = models.ListingActive
		facts.ActivePrice = p.Price
	}
	if facts.ActivePrice != nil {
		facts.ListPrice = facts.ActivePrice
	} else {
		facts.ListPrice = p.LastSalePrice
	}

	if p.TaxAssessedValue != nil && *p.TaxAssessedValue > 0 {
		facts.TaxesAnnual = models.Float(*p.TaxAssessedValue * assessedTaxRate)
	}
	if d, ok := parseDate(p.LastSaleDate); ok {
		facts.LastSoldDate = &d
	}

	return facts
}

// MarketStats returns area statistics around a location. city names the
// area when RentCast does not.
func (c *Client) MarketStats(ctx context.Context, lat, lon float64, city string) (*models.MarketStats, error) {
	if !c.Enabled() {
		return nil, nil
	}

	params := url.Values{
		"latitude":  []string{strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": []string{strconv.FormatFloat(lon, 'f', -1, 64)},
	}
	var records []marketRecord
	found, err := c.get(ctx, "/markets", params, &records)
	if err != nil || !found || len(records) == 0 {
		return nil, err
	}
	m := records[0]

	stats := &models.MarketStats{
		Neighborhood:       firstNonEmpty(m.Neighborhood, city),
		City:               firstNonEmpty(m.City, city),
		MedianListPrice:    m.MedianListPrice,
		MedianSoldPrice:    m.MedianSoldPrice,
		PricePerSqftMedian: m.MedianPricePerSqFt,
		ActiveListings:     m.ActiveListings,
		SoldLast90d:        m.SoldLast90Days,
		DOMMedian:          m.MedianDaysOnMarket,
		PriceTrend12mPct:   m.PriceChange12Month,
		PriceTrend5yPct:    m.PriceChange5Year,
	}
	if m.ActiveListings != nil && m.SoldLast90Days != nil && *m.SoldLast90Days > 0 {
		stats.SupplyToDemandRatio = models.Float(float64(*m.ActiveListings) / float64(*m.SoldLast90Days))
	}
	return stats, nil
}

// ComparableSales returns up to limit comparables for an address. Records
// without a usable price are skipped.
func (c *Client) ComparableSales(ctx context.Context, address string, limit int) ([]models.ComparableRecord, error) {
	if !c.Enabled() {
		return nil, nil
	}

	params := url.Values{
		"address": []string{address},
		"limit":   []string{strconv.Itoa(limit)},
	}
	var records []propertyRecord
	found, err := c.get(ctx, "/properties/comps", params, &records)
	if err != nil || !found {
		return nil, err
	}

	now := c.now()
	comps := make([]models.ComparableRecord, 0, len(records))
	for _, r := range records {
		comp := models.ComparableRecord{
			Status:    models.CompActive,
			Beds:      r.Bedrooms,
			Baths:     r.Bathrooms,
			Sqft:      r.SquareFootage,
			Address:   r.FormattedAddress,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		}
		switch {
		case r.LastSalePrice != nil && *r.LastSalePrice > 0:
			comp.Price = *r.LastSalePrice
			comp.Status = models.CompSold
		case r.Price != nil:
			comp.Price = *r.Price
		}
		if comp.Price <= 0 {
			continue
		}
		if r.SquareFootage != nil && *r.SquareFootage > 0 {
			comp.PricePerSqft = comp.Price / float64(*r.SquareFootage)
		}
		if d, ok := parseDate(r.LastSaleDate); ok {
			if days := int(now.Sub(d).Hours() / 24); days > 0 {
				comp.DaysAgo = days
			}
		}
		comps = append(comps, comp)
	}

	c.logger.WithFields(logrus.Fields{
		"address": address,
		"count":   len(comps),
	}).Debug("Fetched comparable sales")

	return comps, nil
}

// get decodes the response of path into out. RentCast answers with either a
// single object or a list; both decode into a slice. found is false on 404.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) (found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("rentcast %s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("rentcast %s returned status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return false, nil
	}
	if body[0] == '{' {
		body = append(append([]byte{'['}, body...), ']')
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("failed to parse rentcast %s response: %w", path, err)
	}
	return true, nil
}

// parseDate accepts plain dates and RFC 3339 timestamps
func parseDate(s string) (time.Time, bool) {
	if len(s) < len(dateLayout) {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, s[:len(dateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
