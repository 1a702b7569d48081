package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type GeometryType string

const (
	GeometryCircle  GeometryType = "circle"
	GeometryPoint   GeometryType = "point"
	GeometryPolygon GeometryType = "polygon"
	GeometryLine    GeometryType = "line"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusCleared Status = "cleared"
)

type Reason string

const (
	ReasonWeather      Reason = "weather"
	ReasonAccident     Reason = "accident"
	ReasonConstruction Reason = "construction"
	ReasonEvent        Reason = "event"
	ReasonEmergency    Reason = "emergency"
	ReasonFires        Reason = "fires"
	ReasonOther        Reason = "other"
)

// AllReasons is the widest reason set; deployments may narrow it through config.
var AllReasons = []Reason{
	ReasonWeather, ReasonAccident, ReasonConstruction, ReasonEvent,
	ReasonEmergency, ReasonFires, ReasonOther,
}

type Action string

const (
	ActionShutdownAll   Action = "shutdown_all"
	ActionShutdownBOnly Action = "shutdown_b_only"
	ActionCaution       Action = "caution"
)

var AllActions = []Action{ActionShutdownAll, ActionShutdownBOnly, ActionCaution}

// LatLng is a [lat, lng] pair in decimal degrees.
type LatLng [2]float64

func (p LatLng) Lat() float64 { return p[0] }
func (p LatLng) Lng() float64 { return p[1] }

// Shutdown is one tracked closure. Geometry columns are flat to match the
// storage layout; geometry.FromRecord turns them into a typed shape.
type Shutdown struct {
	bun.BaseModel `bun:"table:shutdowns,alias:sd"`

	ID           uuid.UUID    `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Title        string       `bun:"title,notnull" json:"title"`
	GeometryType GeometryType `bun:"geometry_type,notnull" json:"geometry_type"`
	CenterLat    *float64     `bun:"center_lat" json:"center_lat,omitempty"`
	CenterLng    *float64     `bun:"center_lng" json:"center_lng,omitempty"`
	RadiusKm     *float64     `bun:"radius_km" json:"radius_km,omitempty"`
	Coordinates  []LatLng     `bun:"coordinates,type:jsonb" json:"coordinates,omitempty"`
	FromCity     string       `bun:"from_city" json:"from_city,omitempty"`
	ToCity       string       `bun:"to_city" json:"to_city,omitempty"`

	Reason Reason `bun:"reason,notnull" json:"reason"`
	Action Action `bun:"action" json:"action,omitempty"`
	Status Status `bun:"status,notnull,default:'active'" json:"status"`
	Region string `bun:"region" json:"region,omitempty"`
	Notes  string `bun:"notes" json:"notes,omitempty"`

	CreatedBy string     `bun:"created_by,notnull" json:"created_by"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	ClearedBy string     `bun:"cleared_by" json:"cleared_by,omitempty"`
	ClearedAt *time.Time `bun:"cleared_at" json:"cleared_at,omitempty"`

	ActivityLog []ActivityEntry `bun:"activity_log,type:jsonb" json:"activity_log"`
}

func (s *Shutdown) IsActive() bool { return s.Status == StatusActive }

// Clone returns a copy that shares no slices or pointers with s.
func (s *Shutdown) Clone() *Shutdown {
	c := *s
	c.CenterLat = cloneFloat(s.CenterLat)
	c.CenterLng = cloneFloat(s.CenterLng)
	c.RadiusKm = cloneFloat(s.RadiusKm)
	if s.Coordinates != nil {
		c.Coordinates = append([]LatLng(nil), s.Coordinates...)
	}
	if s.ActivityLog != nil {
		c.ActivityLog = append([]ActivityEntry(nil), s.ActivityLog...)
	}
	if s.ClearedAt != nil {
		t := *s.ClearedAt
		c.ClearedAt = &t
	}
	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

type ActivityAction string

const (
	ActivityCreated ActivityAction = "created"
	ActivityEdited  ActivityAction = "edited"
	ActivityCleared ActivityAction = "cleared"
)

// ActivityEntry is one audit line on a shutdown.
type ActivityEntry struct {
	Action    ActivityAction `json:"action"`
	User      string         `json:"user"`
	Timestamp time.Time      `json:"timestamp"`
	Details   string         `json:"details,omitempty"`
}

// CreateShutdownRequest is the body of POST /shutdowns.
type CreateShutdownRequest struct {
	Mode     string   `json:"mode" validate:"omitempty,oneof=city road shape"`
	Title    string   `json:"title" validate:"max=200"`
	City     string   `json:"city"`
	RadiusKm *float64 `json:"radius_km" validate:"omitempty,radius_km"`
	FromCity string   `json:"from_city"`
	ToCity   string   `json:"to_city"`
	Reason   Reason   `json:"reason" validate:"required"`
	Action   Action   `json:"action"`
	Notes    string   `json:"notes"`

	// Direct shape input, mode "shape" only.
	GeometryType GeometryType `json:"geometry_type"`
	CenterLat    *float64     `json:"center_lat" validate:"omitempty,lat"`
	CenterLng    *float64     `json:"center_lng" validate:"omitempty,lng"`
	Coordinates  []LatLng     `json:"coordinates"`
	Region       string       `json:"region"`
}

// UpdateShutdownRequest is a partial edit; nil fields are left alone.
type UpdateShutdownRequest struct {
	Title        *string       `json:"title" validate:"omitempty,max=200"`
	Reason       *Reason       `json:"reason"`
	Action       *Action       `json:"action"`
	Notes        *string       `json:"notes"`
	RadiusKm     *float64      `json:"radius_km" validate:"omitempty,radius_km"`
	FromCity     *string       `json:"from_city"`
	ToCity       *string       `json:"to_city"`
	GeometryType *GeometryType `json:"geometry_type,omitempty"`
}
