package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shutdown-tracker/internal/filter"
	"shutdown-tracker/internal/geometry"
	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/styling"
)

// List returns every record newest first, through the cache when one is configured.
func (s *ShutdownService) List(ctx context.Context) ([]models.Shutdown, error) {
	if recs, ok, err := s.cache.GetAll(ctx); err != nil {
		s.logr.Warn("shutdown cache read failed", zap.Error(err))
	} else if ok {
		return recs, nil
	}

	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetAll(ctx, recs); err != nil {
		s.logr.Warn("shutdown cache write failed", zap.Error(err))
	}
	s.metrics.ListSize(len(recs))
	return recs, nil
}

func (s *ShutdownService) Get(ctx context.Context, id uuid.UUID) (*models.Shutdown, error) {
	return s.store.Get(ctx, id)
}

func (s *ShutdownService) History(ctx context.Context, id uuid.UUID) ([]models.ActivityEntry, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.ActivityLog == nil {
		return []models.ActivityEntry{}, nil
	}
	return rec.ActivityLog, nil
}

type ListView struct {
	Shutdowns []models.Shutdown `json:"shutdowns"`
	Matched   int               `json:"matched"`
	Regions   []string          `json:"regions"`
	Summary   filter.Summary    `json:"summary"`
}

// View filters the full set. Regions and summary describe the unfiltered set
// so the filter options do not shrink as filters are applied.
func (s *ShutdownService) View(ctx context.Context, cfg filter.Config) (*ListView, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := filter.Records(all, cfg)
	return &ListView{
		Shutdowns: matched,
		Matched:   len(matched),
		Regions:   filter.DistinctRegions(all),
		Summary:   filter.Summarize(all),
	}, nil
}

func (s *ShutdownService) Regions(ctx context.Context) ([]string, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.DistinctRegions(all), nil
}

func (s *ShutdownService) Legend() []styling.LegendEntry {
	return s.palette.Legend()
}

type Feature struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id"`
	Geometry   map[string]interface{} `json:"geometry"`
	Properties FeatureProperties      `json:"properties"`
}

type FeatureProperties struct {
	Title        string              `json:"title"`
	GeometryType models.GeometryType `json:"geometry_type"`
	Status       models.Status       `json:"status"`
	Reason       models.Reason       `json:"reason"`
	Action       models.Action       `json:"action,omitempty"`
	Region       string              `json:"region,omitempty"`
	RadiusKm     *float64            `json:"radius_km,omitempty"`
	Style        styling.Style       `json:"style"`
}

type MapView struct {
	Type     string           `json:"type"`
	Features []Feature        `json:"features"`
	Bounds   *geometry.Bounds `json:"bounds,omitempty"`
}

// MapOptions carries the interaction state, keyed by record id.
type MapOptions struct {
	Selected map[uuid.UUID]bool
	Hovered  map[uuid.UUID]bool
}

// Map renders the filtered records as a GeoJSON FeatureCollection. Records
// whose shape cannot be read are skipped without error.
func (s *ShutdownService) Map(ctx context.Context, cfg filter.Config, opts MapOptions) (*MapView, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	recs := filter.Records(all, cfg)

	view := &MapView{Type: "FeatureCollection", Features: make([]Feature, 0, len(recs))}
	for i := range recs {
		rec := &recs[i]
		shape, err := geometry.FromRecord(rec)
		if err != nil {
			s.logr.Debug("skipping unrenderable shutdown", zap.String("id", rec.ID.String()), zap.Error(err))
			continue
		}
		in := styling.Interaction{Selected: opts.Selected[rec.ID], Hovered: opts.Hovered[rec.ID]}
		props := FeatureProperties{
			Title:        rec.Title,
			GeometryType: rec.GeometryType,
			Status:       rec.Status,
			Reason:       rec.Reason,
			Action:       rec.Action,
			Region:       rec.Region,
			Style:        s.palette.StyleFor(rec, in),
		}
		if c, ok := shape.(geometry.Circle); ok {
			r := c.RadiusKm
			props.RadiusKm = &r
		}
		view.Features = append(view.Features, Feature{
			Type:       "Feature",
			ID:         rec.ID.String(),
			Geometry:   geometry.ToGeoJSON(shape),
			Properties: props,
		})
	}
	if b, ok := geometry.FitBounds(recs); ok {
		view.Bounds = &b
	}
	return view, nil
}
