package models

import "time"

// PropertyFacts is a snapshot of one property as supplied by the acquisition
// layer. Nil numeric fields are unknown.
type PropertyFacts struct {
	Address       string     `json:"address"`
	Latitude      *float64   `json:"lat"`
	Longitude     *float64   `json:"lon"`
	Beds          *float64   `json:"beds"`
	Baths         *float64   `json:"baths"`
	Sqft          *int       `json:"sqft"`
	YearBuilt     *int       `json:"year_built"`
	LotSizeSqft   *int       `json:"lot_size_sqft"`
	PropertyType  string     `json:"property_type,omitempty"`
	Photos        []string   `json:"photos"`
	Description   string     `json:"description,omitempty"`
	HOAMonthly    *float64   `json:"hoa_monthly"`
	TaxesAnnual   *float64   `json:"taxes_annual"`
	ListPrice     *float64   `json:"list_price"`
	RentEstimate  *float64   `json:"rent_estimate"`
	DaysOnMarket  *int       `json:"days_on_market"`
	LastSoldPrice *float64   `json:"last_sold_price"`
	LastSoldDate  *time.Time `json:"last_sold_date"`

	// Live listing fields, filled when the data source knows the listing state
	Status          ListingStatus `json:"status,omitempty"`
	ActivePrice     *float64      `json:"active_price"`
	SoldPrice       *float64      `json:"sold_price"`
	LastListedPrice *float64      `json:"last_listed_price"`
	DataSource      string        `json:"data_source,omitempty"`
	FetchedAt       *time.Time    `json:"fetched_at"`
}

type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingOffMarket ListingStatus = "off_market"
)

// HasCoordinates reports whether both latitude and longitude are known
func (p *PropertyFacts) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// MarketStats holds area level aggregates. All fields are optional.
type MarketStats struct {
	Neighborhood        string   `json:"neighborhood,omitempty"`
	City                string   `json:"city,omitempty"`
	MedianListPrice     *float64 `json:"median_list_price"`
	MedianSoldPrice     *float64 `json:"median_sold_price"`
	PricePerSqftMedian  *float64 `json:"price_per_sqft_median"`
	ActiveListings      *int     `json:"active_listings"`
	SoldLast90d         *int     `json:"sold_last_90d"`
	DOMMedian           *int     `json:"dom_median"`
	SupplyToDemandRatio *float64 `json:"supply_to_demand_ratio"`
	PriceTrend12mPct    *float64 `json:"price_trend_12m_pct"`
	PriceTrend5yPct     *float64 `json:"price_trend_5y_pct"`
}

type CompStatus string

const (
	CompSold   CompStatus = "sold"
	CompActive CompStatus = "active"
)

// ComparableRecord is one nearby property used as a pricing reference
type ComparableRecord struct {
	Price        float64    `json:"price"`
	PricePerSqft float64    `json:"price_per_sqft"`
	Status       CompStatus `json:"status"`
	Beds         *float64   `json:"beds"`
	Baths        *float64   `json:"baths"`
	Sqft         *int       `json:"sqft"`
	DaysAgo      int        `json:"days_ago"`
	Address      string     `json:"address,omitempty"`
	Latitude     *float64   `json:"lat,omitempty"`
	Longitude    *float64   `json:"lon,omitempty"`
}

// Float returns a pointer to v. Handy for building optional fields.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v
func Int(v int) *int {
	return &v
}
