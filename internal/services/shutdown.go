package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shutdown-tracker/internal/access"
	"shutdown-tracker/internal/activity"
	"shutdown-tracker/internal/cache"
	"shutdown-tracker/internal/errs"
	"shutdown-tracker/internal/geocoding"
	"shutdown-tracker/internal/geometry"
	"shutdown-tracker/internal/metrics"
	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/store"
	"shutdown-tracker/internal/styling"
	"shutdown-tracker/internal/validation"
)

// Create modes
const (
	ModeCity  = "city"
	ModeRoad  = "road"
	ModeShape = "shape"
)

type ShutdownOptions struct {
	Scheme         styling.Scheme
	AllowedReasons []models.Reason // empty means models.AllReasons
	Cache          *cache.ShutdownCache
	Metrics        *metrics.Collector
	Now            func() time.Time
}

// ShutdownService is the only writer of shutdown records.
type ShutdownService struct {
	store    store.ShutdownStore
	geocoder geocoding.Geocoder
	cache    *cache.ShutdownCache
	metrics  *metrics.Collector
	palette  styling.Palette
	reasons  map[models.Reason]bool
	logr     *zap.Logger
	now      func() time.Time
}

func NewShutdownService(st store.ShutdownStore, geo geocoding.Geocoder, logr *zap.Logger, opts ShutdownOptions) *ShutdownService {
	allowed := opts.AllowedReasons
	if len(allowed) == 0 {
		allowed = models.AllReasons
	}
	reasons := make(map[models.Reason]bool, len(allowed))
	for _, r := range allowed {
		reasons[r] = true
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ShutdownService{
		store:    st,
		geocoder: geo,
		cache:    opts.Cache,
		metrics:  opts.Metrics,
		palette:  styling.NewPalette(opts.Scheme),
		reasons:  reasons,
		logr:     logr,
		now:      now,
	}
}

func (s *ShutdownService) Palette() styling.Palette { return s.palette }

// Create resolves the geometry of req, derives a title when blank and stores
// an active record carrying a single created entry. Nothing is stored when
// geocoding fails.
func (s *ShutdownService) Create(ctx context.Context, req models.CreateShutdownRequest, user *models.User) (rec *models.Shutdown, err error) {
	const op = "create shutdown"
	defer func() { s.metrics.Operation("create", err) }()

	if err := access.RequireMutate(op, user); err != nil {
		return nil, err
	}
	if err := validation.Struct(op, req); err != nil {
		return nil, err
	}
	if err := s.checkReason(op, req.Reason); err != nil {
		return nil, err
	}
	action, err := s.resolveAction(op, req.Action)
	if err != nil {
		return nil, err
	}

	rec = &models.Shutdown{
		Title:  strings.TrimSpace(req.Title),
		Reason: req.Reason,
		Action: action,
		Status: models.StatusActive,
		Notes:  req.Notes,
	}

	var details string
	switch mode := inferMode(req); mode {
	case ModeCity:
		details, err = s.buildCircle(ctx, op, rec, req)
	case ModeRoad:
		details, err = s.buildRoad(ctx, op, rec, req)
	default:
		details, err = buildShape(op, rec, req)
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec.CreatedBy = user.Email
	rec.CreatedAt = now
	rec.ActivityLog = activity.Append(nil, models.ActivityCreated, user.Email, details, now)

	if err := s.store.Create(ctx, rec); err != nil {
		s.logr.Error("failed to store shutdown", zap.Error(err))
		return nil, err
	}
	s.invalidate(ctx)

	s.logr.Info("shutdown created",
		zap.String("id", rec.ID.String()),
		zap.String("geometry", string(rec.GeometryType)),
		zap.String("user", user.Email))
	return rec, nil
}

func inferMode(req models.CreateShutdownRequest) string {
	switch {
	case req.Mode != "":
		return req.Mode
	case req.City != "":
		return ModeCity
	case req.FromCity != "" || req.ToCity != "":
		return ModeRoad
	}
	return ModeShape
}

func (s *ShutdownService) buildCircle(ctx context.Context, op string, rec *models.Shutdown, req models.CreateShutdownRequest) (string, error) {
	if strings.TrimSpace(req.City) == "" {
		return "", errs.Validation(op, "city name is required", "city")
	}
	if req.RadiusKm == nil {
		return "", errs.Validation(op, "radius is required", "radius_km")
	}
	radius := *req.RadiusKm

	place, err := s.geocodeCity(ctx, req.City)
	if err != nil {
		return "", err
	}

	shape := geometry.Circle{Center: models.LatLng{place.Latitude, place.Longitude}, RadiusKm: radius}
	if err := geometry.Validate(shape); err != nil {
		return "", errs.Geocoding(op, "location lookup returned unusable coordinates", err)
	}
	geometry.Assign(rec, shape)
	rec.Region = place.Region
	if rec.Title == "" {
		rec.Title = activity.CircleTitle(radius, place.Name)
	}
	return activity.CreatedCircleDetails(radius, place.Name), nil
}

func (s *ShutdownService) buildRoad(ctx context.Context, op string, rec *models.Shutdown, req models.CreateShutdownRequest) (string, error) {
	var missing []string
	if strings.TrimSpace(req.FromCity) == "" {
		missing = append(missing, "from_city")
	}
	if strings.TrimSpace(req.ToCity) == "" {
		missing = append(missing, "to_city")
	}
	if len(missing) > 0 {
		return "", errs.Validation(op, "both city names are required", missing...)
	}

	from, to, err := s.geocodeRoute(ctx, req.FromCity, req.ToCity)
	if err != nil {
		return "", err
	}
	if err := assignRoad(op, rec, from, to); err != nil {
		return "", err
	}
	rec.FromCity, rec.ToCity = req.FromCity, req.ToCity
	if rec.Title == "" {
		rec.Title = activity.RoadTitle(from.Name, to.Name)
	}
	return activity.CreatedRoadDetails(from.Name, to.Name), nil
}

func assignRoad(op string, rec *models.Shutdown, from, to geocoding.Place) error {
	shape := geometry.Line{Path: []models.LatLng{
		{from.Latitude, from.Longitude},
		{to.Latitude, to.Longitude},
	}}
	if err := geometry.Validate(shape); err != nil {
		return errs.Geocoding(op, "location lookup returned unusable coordinates", err)
	}
	geometry.Assign(rec, shape)
	rec.Region = from.Region
	return nil
}

func buildShape(op string, rec *models.Shutdown, req models.CreateShutdownRequest) (string, error) {
	if rec.Title == "" {
		return "", errs.Validation(op, "title is required for a drawn shape", "title")
	}
	probe := &models.Shutdown{
		GeometryType: req.GeometryType,
		CenterLat:    req.CenterLat,
		CenterLng:    req.CenterLng,
		RadiusKm:     req.RadiusKm,
		Coordinates:  req.Coordinates,
	}
	shape, err := geometry.FromRecord(probe)
	if err != nil {
		return "", errs.Validation(op, "invalid geometry: "+err.Error(), "geometry_type")
	}
	if err := geometry.Validate(shape); err != nil {
		return "", errs.Validation(op, "invalid geometry: "+err.Error(), "coordinates")
	}
	geometry.Assign(rec, shape)
	rec.Region = strings.TrimSpace(req.Region)
	return activity.CreatedShapeDetails(shape.Kind(), rec.Title), nil
}

// Update merges patch into the record, re-geocoding a line only when its own
// city names change, and appends one edited entry.
func (s *ShutdownService) Update(ctx context.Context, id uuid.UUID, patch models.UpdateShutdownRequest, user *models.User) (rec *models.Shutdown, err error) {
	const op = "update shutdown"
	defer func() { s.metrics.Operation("update", err) }()

	if err := access.RequireMutate(op, user); err != nil {
		return nil, err
	}
	if err := validation.Struct(op, patch); err != nil {
		return nil, err
	}

	before, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !before.IsActive() {
		return nil, errs.Validation(op, "cleared shutdowns cannot be edited", "status")
	}
	if patch.GeometryType != nil && *patch.GeometryType != before.GeometryType {
		return nil, errs.ValidationWrap(op, errs.ErrGeometryImmutable)
	}

	after := before.Clone()
	if err := s.mergePatch(op, after, patch); err != nil {
		return nil, err
	}

	if after.GeometryType == models.GeometryLine &&
		(after.FromCity != before.FromCity || after.ToCity != before.ToCity) {
		from, to, err := s.geocodeRoute(ctx, after.FromCity, after.ToCity)
		if err != nil {
			return nil, err
		}
		if err := assignRoad(op, after, from, to); err != nil {
			return nil, err
		}
		if after.Title == "" {
			after.Title = activity.RoadTitle(from.Name, to.Name)
		}
	}
	if after.Title == "" {
		return nil, errs.Validation(op, "title cannot be blank", "title")
	}

	details := activity.DiffForEdit(before, after, activity.TrackedFields(before.GeometryType, s.palette.Scheme()))
	after.ActivityLog = activity.Append(before.ActivityLog, models.ActivityEdited, user.Email, details, s.now().UTC())

	if err := s.store.Update(ctx, after); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logr.Info("shutdown updated",
		zap.String("id", id.String()),
		zap.String("details", details),
		zap.String("user", user.Email))
	return after, nil
}

func (s *ShutdownService) mergePatch(op string, rec *models.Shutdown, patch models.UpdateShutdownRequest) error {
	if patch.Title != nil {
		rec.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Reason != nil {
		if err := s.checkReason(op, *patch.Reason); err != nil {
			return err
		}
		rec.Reason = *patch.Reason
	}
	if patch.Action != nil && s.palette.Scheme() == styling.SchemeAction {
		action, err := s.resolveAction(op, *patch.Action)
		if err != nil {
			return err
		}
		rec.Action = action
	}
	if patch.Notes != nil {
		rec.Notes = *patch.Notes
	}
	if patch.RadiusKm != nil {
		if rec.GeometryType != models.GeometryCircle {
			return errs.Validation(op, "radius applies to circle shutdowns only", "radius_km")
		}
		r := *patch.RadiusKm
		rec.RadiusKm = &r
	}
	if patch.FromCity != nil || patch.ToCity != nil {
		if rec.GeometryType != models.GeometryLine {
			return errs.Validation(op, "city names apply to road shutdowns only", "from_city", "to_city")
		}
		if patch.FromCity != nil {
			rec.FromCity = strings.TrimSpace(*patch.FromCity)
		}
		if patch.ToCity != nil {
			rec.ToCity = strings.TrimSpace(*patch.ToCity)
		}
		if rec.FromCity == "" || rec.ToCity == "" {
			return errs.Validation(op, "both city names are required", "from_city", "to_city")
		}
	}
	return nil
}

// Clear moves an active record to cleared. A second clear is rejected.
func (s *ShutdownService) Clear(ctx context.Context, id uuid.UUID, user *models.User) (rec *models.Shutdown, err error) {
	const op = "clear shutdown"
	defer func() { s.metrics.Operation("clear", err) }()

	if err := access.RequireMutate(op, user); err != nil {
		return nil, err
	}

	rec, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsActive() {
		return nil, errs.ValidationWrap(op, errs.ErrAlreadyCleared)
	}

	now := s.now().UTC()
	rec.Status = models.StatusCleared
	rec.ClearedBy = user.Email
	rec.ClearedAt = &now
	rec.ActivityLog = activity.Append(rec.ActivityLog, models.ActivityCleared, user.Email, activity.ClearedDetails, now)

	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logr.Info("shutdown cleared", zap.String("id", id.String()), zap.String("user", user.Email))
	return rec, nil
}

// Delete removes the record for good. confirm must be true.
func (s *ShutdownService) Delete(ctx context.Context, id uuid.UUID, confirm bool, user *models.User) (err error) {
	const op = "delete shutdown"
	defer func() { s.metrics.Operation("delete", err) }()

	if err := access.RequireMutate(op, user); err != nil {
		return err
	}
	if !confirm {
		return errs.ValidationWrap(op, errs.ErrConfirmationRequired)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)

	s.logr.Info("shutdown deleted", zap.String("id", id.String()), zap.String("user", user.Email))
	return nil
}

func (s *ShutdownService) checkReason(op string, r models.Reason) error {
	if !s.reasons[r] {
		return errs.Validation(op, "unsupported reason "+string(r), "reason")
	}
	return nil
}

// resolveAction applies the form default under the action scheme and drops
// the tag under the reason scheme.
func (s *ShutdownService) resolveAction(op string, a models.Action) (models.Action, error) {
	if s.palette.Scheme() != styling.SchemeAction {
		return "", nil
	}
	if a == "" {
		return models.ActionShutdownAll, nil
	}
	for _, known := range models.AllActions {
		if a == known {
			return a, nil
		}
	}
	return "", errs.Validation(op, "unsupported action "+string(a), "action")
}

func (s *ShutdownService) geocodeCity(ctx context.Context, city string) (geocoding.Place, error) {
	started := time.Now()
	p, err := s.geocoder.GeocodeCity(ctx, city)
	s.metrics.Geocode("city", started, err)
	if err != nil {
		s.logr.Warn("geocoding failed", zap.String("city", city), zap.Error(err))
	}
	return p, err
}

func (s *ShutdownService) geocodeRoute(ctx context.Context, from, to string) (geocoding.Place, geocoding.Place, error) {
	started := time.Now()
	a, b, err := s.geocoder.GeocodeRoute(ctx, from, to)
	s.metrics.Geocode("route", started, err)
	if err != nil {
		s.logr.Warn("geocoding failed", zap.String("from", from), zap.String("to", to), zap.Error(err))
	}
	return a, b, err
}

func (s *ShutdownService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logr.Warn("failed to invalidate shutdown cache", zap.Error(err))
	}
}
