package styling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/styling"
)

func record(geom models.GeometryType, status models.Status, reason models.Reason, action models.Action) *models.Shutdown {
	return &models.Shutdown{GeometryType: geom, Status: status, Reason: reason, Action: action}
}

func TestColor_ReasonScheme(t *testing.T) {
	p := styling.NewPalette(styling.SchemeReason)

	assert.Equal(t, "#3B82F6", p.Color(record(models.GeometryCircle, models.StatusActive, models.ReasonWeather, "")))
	assert.Equal(t, "#EF4444", p.Color(record(models.GeometryCircle, models.StatusActive, models.ReasonAccident, models.ActionCaution)))
	assert.Equal(t, styling.DefaultColor, p.Color(record(models.GeometryCircle, models.StatusActive, "volcano", "")))
	assert.Equal(t, styling.ClearedColor, p.Color(record(models.GeometryCircle, models.StatusCleared, models.ReasonWeather, "")))
}

func TestColor_ActionScheme(t *testing.T) {
	p := styling.NewPalette(styling.SchemeAction)

	assert.Equal(t, "#EF4444", p.Color(record(models.GeometryCircle, models.StatusActive, models.ReasonWeather, models.ActionShutdownAll)))
	assert.Equal(t, "#8B5CF6", p.Color(record(models.GeometryCircle, models.StatusActive, models.ReasonWeather, models.ActionShutdownBOnly)))
	assert.Equal(t, "#EAB308", p.Color(record(models.GeometryCircle, models.StatusActive, models.ReasonWeather, models.ActionCaution)))
	assert.Equal(t, styling.DefaultColor, p.Color(record(models.GeometryCircle, models.StatusActive, models.ReasonWeather, "")))
	assert.Equal(t, styling.ClearedColor, p.Color(record(models.GeometryCircle, models.StatusCleared, models.ReasonWeather, models.ActionCaution)))
}

func TestStyleFor_BaseOpacity(t *testing.T) {
	p := styling.NewPalette(styling.SchemeReason)

	active := p.StyleFor(record(models.GeometryPolygon, models.StatusActive, models.ReasonWeather, ""), styling.Interaction{})
	cleared := p.StyleFor(record(models.GeometryPolygon, models.StatusCleared, models.ReasonWeather, ""), styling.Interaction{})

	assert.Equal(t, 0.5, active.FillOpacity)
	assert.Equal(t, 0.3, cleared.FillOpacity)
	assert.Equal(t, 2, active.Weight)
	assert.True(t, active.Fill)
	assert.Equal(t, active.Color, active.FillColor)
}

func TestStyleFor_EmphasisNeverChangesColor(t *testing.T) {
	p := styling.NewPalette(styling.SchemeAction)
	rec := record(models.GeometryCircle, models.StatusActive, models.ReasonWeather, models.ActionCaution)

	base := p.StyleFor(rec, styling.Interaction{})
	hover := p.StyleFor(rec, styling.Interaction{Hovered: true})
	sel := p.StyleFor(rec, styling.Interaction{Selected: true})
	both := p.StyleFor(rec, styling.Interaction{Selected: true, Hovered: true})

	assert.Equal(t, base.Color, hover.Color)
	assert.Equal(t, base.Color, sel.Color)
	assert.Greater(t, hover.Weight, base.Weight)
	assert.Greater(t, sel.Weight, hover.Weight)
	assert.Greater(t, hover.FillOpacity, base.FillOpacity)
	assert.Greater(t, sel.FillOpacity, hover.FillOpacity)
	assert.Equal(t, sel, both)
}

func TestStyleFor_LineIsThickerAndUnfilled(t *testing.T) {
	p := styling.NewPalette(styling.SchemeReason)
	line := p.StyleFor(record(models.GeometryLine, models.StatusActive, models.ReasonAccident, ""), styling.Interaction{})
	circle := p.StyleFor(record(models.GeometryCircle, models.StatusActive, models.ReasonAccident, ""), styling.Interaction{})

	assert.Greater(t, line.Weight, circle.Weight)
	assert.False(t, line.Fill)
	assert.Zero(t, line.FillOpacity)

	selected := p.StyleFor(record(models.GeometryLine, models.StatusActive, models.ReasonAccident, ""), styling.Interaction{Selected: true})
	assert.Equal(t, 6, selected.Weight)
}

func TestStyleFor_Deterministic(t *testing.T) {
	p := styling.NewPalette(styling.SchemeReason)
	rec := record(models.GeometryCircle, models.StatusActive, models.ReasonEvent, "")
	in := styling.Interaction{Hovered: true}

	first := p.StyleFor(rec, in)
	for i := 0; i < 50; i++ {
		require.Equal(t, first, p.StyleFor(rec, in))
	}
}

func TestLegend(t *testing.T) {
	legend := styling.NewPalette(styling.SchemeAction).Legend()
	require.Len(t, legend, 4)
	assert.Equal(t, "shutdown_all", legend[0].Key)
	assert.Equal(t, styling.LegendEntry{Key: "cleared", Color: styling.ClearedColor}, legend[3])

	assert.Len(t, styling.NewPalette(styling.SchemeReason).Legend(), len(models.AllReasons)+1)
}

func TestParseScheme(t *testing.T) {
	s, err := styling.ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, styling.SchemeAction, s)

	s, err = styling.ParseScheme("reason")
	require.NoError(t, err)
	assert.Equal(t, styling.SchemeReason, s)

	_, err = styling.ParseScheme("colour")
	assert.Error(t, err)
}
