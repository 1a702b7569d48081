// Package styling maps a shutdown and its interaction state to the color,
// opacity and stroke weight the map and list draw it with.
package styling

import (
	"fmt"

	"shutdown-tracker/internal/models"
)

// Scheme selects which tag drives the color of an active shutdown.
type Scheme string

const (
	SchemeAction Scheme = "action"
	SchemeReason Scheme = "reason"
)

func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case SchemeAction, SchemeReason:
		return Scheme(s), nil
	case "":
		return SchemeAction, nil
	}
	return "", fmt.Errorf("unknown classification scheme %q", s)
}

const (
	ClearedColor = "#9CA3AF"
	DefaultColor = "#6B7280"
)

var reasonColors = map[models.Reason]string{
	models.ReasonWeather:      "#3B82F6",
	models.ReasonAccident:     "#EF4444",
	models.ReasonConstruction: "#F59E0B",
	models.ReasonEvent:        "#8B5CF6",
	models.ReasonEmergency:    "#DC2626",
	models.ReasonFires:        "#F97316",
	models.ReasonOther:        DefaultColor,
}

var actionColors = map[models.Action]string{
	models.ActionShutdownAll:   "#EF4444",
	models.ActionShutdownBOnly: "#8B5CF6",
	models.ActionCaution:       "#EAB308",
}

const (
	activeOpacity  = 0.5
	clearedOpacity = 0.3
	hoverOpacity   = 0.1
	selectOpacity  = 0.2

	baseWeight   = 2
	hoverWeight  = 3
	selectWeight = 4
	lineExtra    = 2
)

type Interaction struct {
	Selected bool
	Hovered  bool
}

type Style struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fill_color,omitempty"`
	FillOpacity float64 `json:"fill_opacity"`
	Weight      int     `json:"weight"`
	Fill        bool    `json:"fill"`
}

type Palette struct {
	scheme Scheme
}

func NewPalette(scheme Scheme) Palette {
	if scheme == "" {
		scheme = SchemeAction
	}
	return Palette{scheme: scheme}
}

func (p Palette) Scheme() Scheme { return p.scheme }

// Color is the classification color of rec, ignoring interaction state.
func (p Palette) Color(rec *models.Shutdown) string {
	if rec.Status == models.StatusCleared {
		return ClearedColor
	}
	var (
		c  string
		ok bool
	)
	if p.scheme == SchemeAction {
		c, ok = actionColors[rec.Action]
	} else {
		c, ok = reasonColors[rec.Reason]
	}
	if !ok {
		return DefaultColor
	}
	return c
}

// StyleFor is a pure function of rec and in: emphasis raises weight and
// opacity but never touches the color.
func (p Palette) StyleFor(rec *models.Shutdown, in Interaction) Style {
	color := p.Color(rec)

	weight := baseWeight
	switch {
	case in.Selected:
		weight = selectWeight
	case in.Hovered:
		weight = hoverWeight
	}

	if rec.GeometryType == models.GeometryLine {
		return Style{Color: color, Weight: weight + lineExtra}
	}

	opacity := activeOpacity
	if rec.Status == models.StatusCleared {
		opacity = clearedOpacity
	}
	switch {
	case in.Selected:
		opacity += selectOpacity
	case in.Hovered:
		opacity += hoverOpacity
	}

	return Style{
		Color:       color,
		FillColor:   color,
		FillOpacity: min(opacity, 1),
		Weight:      weight,
		Fill:        true,
	}
}

type LegendEntry struct {
	Key   string `json:"key"`
	Color string `json:"color"`
}

// Legend lists the colors of the active scheme followed by the cleared color.
func (p Palette) Legend() []LegendEntry {
	var out []LegendEntry
	if p.scheme == SchemeAction {
		for _, a := range models.AllActions {
			out = append(out, LegendEntry{Key: string(a), Color: actionColors[a]})
		}
	} else {
		for _, r := range models.AllReasons {
			out = append(out, LegendEntry{Key: string(r), Color: reasonColors[r]})
		}
	}
	return append(out, LegendEntry{Key: string(models.StatusCleared), Color: ClearedColor})
}
