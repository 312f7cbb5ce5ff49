package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"homeval/server/internal/models"
)

// Feature roles
const (
	RoleSubject  = "subject"
	RoleComp     = "comparable"
	RoleCompArea = "comp_area"
)

// EvaluationFeatures maps a stored evaluation as a feature collection: the
// subject point, one point per located comparable and, when at least three
// comparables are located, the hull they span.
func EvaluationFeatures(rec models.EvaluationRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	subject, hasSubject := SubjectPoint(rec.Facts)
	if hasSubject {
		f := geojson.NewFeature(subject)
		f.Properties = geojson.Properties{
			"role":    RoleSubject,
			"id":      rec.ID,
			"address": rec.Address,
			"intent":  string(rec.Intent),
		}
		for bar, level := range rec.Evaluation.Bars {
			f.Properties[bar] = string(level)
		}
		if level, ok := rec.Evaluation.Bars[models.BarPricePosition]; ok {
			f.Properties["price_label"] = level.Label(rec.Intent)
		}
		if rec.Facts.ListPrice != nil {
			f.Properties["list_price"] = *rec.Facts.ListPrice
		}
		fc.Append(f)
	}

	var compPoints []orb.Point
	for _, c := range rec.Comps {
		p, ok := CompPoint(c)
		if !ok {
			continue
		}
		compPoints = append(compPoints, p)

		f := geojson.NewFeature(p)
		f.Properties = geojson.Properties{
			"role":           RoleComp,
			"address":        c.Address,
			"price":          c.Price,
			"price_per_sqft": c.PricePerSqft,
			"status":         string(c.Status),
			"days_ago":       c.DaysAgo,
		}
		if hasSubject {
			f.Properties["distance_km"] = DistanceKm(subject, p)
		}
		fc.Append(f)
	}

	if hull := ConvexHull(compPoints); hull != nil {
		f := geojson.NewFeature(orb.Polygon{hull})
		f.Properties = geojson.Properties{
			"role":        RoleCompArea,
			"comparables": len(compPoints),
		}
		fc.Append(f)
	}

	return fc
}
