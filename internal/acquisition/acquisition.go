// Package acquisition gathers the facts, area statistics and comparables an
// evaluation is computed from.
package acquisition

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"homeval/server/internal/geocoding"
	"homeval/server/internal/geometry"
	"homeval/server/internal/models"
)

const (
	DefaultCompLimit = 10
	unknownCity      = "Unknown"
)

var ErrNoInput = errors.New("no url, address or facts to evaluate")

// PropertySource looks up property records, area statistics and comparable
// sales. Lookups return nil, nil when the source has nothing.
type PropertySource interface {
	PropertyByAddress(ctx context.Context, address string) (*models.PropertyFacts, error)
	MarketStats(ctx context.Context, lat, lon float64, city string) (*models.MarketStats, error)
	ComparableSales(ctx context.Context, address string, limit int) ([]models.ComparableRecord, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocoding.Location, error)
}

type ListingParser interface {
	ParseListingURL(ctx context.Context, url string) models.PropertyFacts
}

// Sources are the collaborators acquisition may use. Any of them may be nil.
type Sources struct {
	Properties PropertySource
	Geocoder   Geocoder
	Listings   ListingParser
}

// Request names the property. Facts, Stats and Comps are used as given when
// non-nil.
type Request struct {
	URL     string
	Address string
	Facts   *models.PropertyFacts
	Stats   *models.MarketStats
	Comps   []models.ComparableRecord
}

// Bundle is everything the evaluator needs
type Bundle struct {
	Facts models.PropertyFacts
	Stats models.MarketStats
	Comps []models.ComparableRecord
}

type Service struct {
	sources   Sources
	radiusKm  float64
	compLimit int
	logger    *logrus.Logger
}

// NewService creates an acquisition service that drops comparables farther
// than radiusKm from the subject
func NewService(sources Sources, radiusKm float64, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Service{
		sources:   sources,
		radiusKm:  radiusKm,
		compLimit: DefaultCompLimit,
		logger:    logger,
	}
}

// Acquire assembles the bundle for req. Collaborator failures are logged and
// replaced by neutral values; only a cancelled context or a request with
// nothing to evaluate is an error.
func (s *Service) Acquire(ctx context.Context, req Request) (*Bundle, error) {
	if req.URL == "" && req.Address == "" && req.Facts == nil {
		return nil, ErrNoInput
	}

	facts, area := s.facts(ctx, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		stats *models.MarketStats
		comps []models.ComparableRecord
	)

	g, gctx := errgroup.WithContext(ctx)

	if req.Stats != nil {
		stats = req.Stats
	} else if s.sources.Properties != nil && facts.HasCoordinates() {
		g.Go(func() error {
			st, err := s.sources.Properties.MarketStats(gctx, *facts.Latitude, *facts.Longitude, area)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.WithError(err).WithField("address", facts.Address).Warn("Market stats lookup failed")
				return nil
			}
			stats = st
			return nil
		})
	}

	if req.Comps != nil {
		comps = req.Comps
	} else if s.sources.Properties != nil && facts.Address != "" {
		g.Go(func() error {
			cs, err := s.sources.Properties.ComparableSales(gctx, facts.Address, s.compLimit)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.WithError(err).WithField("address", facts.Address).Warn("Comparable sales lookup failed")
				return nil
			}
			comps = cs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if stats == nil {
		city := area
		if city == "" {
			city = unknownCity
		}
		stats = &models.MarketStats{Neighborhood: area, City: city}
	}
	if comps == nil {
		comps = []models.ComparableRecord{}
	}

	before := len(comps)
	if req.Comps == nil {
		comps = geometry.FilterCompsWithinRadius(facts, comps, s.radiusKm)
	}

	s.logger.WithFields(logrus.Fields{
		"address":       facts.Address,
		"comps":         len(comps),
		"comps_dropped": before - len(comps),
		"has_stats":     stats.ActiveListings != nil,
	}).Debug("Acquired evaluation inputs")

	return &Bundle{Facts: facts, Stats: *stats, Comps: comps}, nil
}

// facts resolves the subject and the area name used to describe it
func (s *Service) facts(ctx context.Context, req Request) (models.PropertyFacts, string) {
	var facts models.PropertyFacts

	switch {
	case req.Facts != nil:
		facts = *req.Facts
	case req.URL != "" && s.sources.Listings != nil:
		facts = s.sources.Listings.ParseListingURL(ctx, req.URL)
	case req.Address != "" && s.sources.Properties != nil:
		found, err := s.sources.Properties.PropertyByAddress(ctx, req.Address)
		if err != nil {
			s.logger.WithError(err).WithField("address", req.Address).Warn("Property lookup failed")
		}
		if found != nil {
			facts = *found
		}
	}

	if facts.Address == "" {
		facts.Address = firstNonEmpty(req.Address, req.URL)
	}

	area := localityFromAddress(facts.Address)

	// Listing page titles are not reliable addresses
	target := req.Address
	if target == "" && req.Facts != nil {
		target = facts.Address
	}
	if s.sources.Geocoder != nil && !facts.HasCoordinates() && target != "" {
		loc, err := s.sources.Geocoder.Geocode(ctx, target)
		if err != nil {
			s.logger.WithError(err).WithField("address", target).Warn("Geocoding failed")
		} else {
			facts.Latitude = models.Float(loc.Latitude)
			facts.Longitude = models.Float(loc.Longitude)
			area = firstNonEmpty(loc.Neighborhood, loc.City, area)
		}
	}

	return facts, area
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
