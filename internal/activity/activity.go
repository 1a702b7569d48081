// Package activity builds the append-only audit trail carried by every shutdown.
package activity

import (
	"strconv"
	"strings"
	"time"

	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/styling"
)

const NoChanges = "No changes made"

// Append returns a new log with one entry added; log itself is never modified.
func Append(log []models.ActivityEntry, action models.ActivityAction, user, details string, at time.Time) []models.ActivityEntry {
	out := make([]models.ActivityEntry, len(log), len(log)+1)
	copy(out, log)
	return append(out, models.ActivityEntry{
		Action:    action,
		User:      user,
		Timestamp: at.UTC(),
		Details:   details,
	})
}

// Field is one user-editable attribute compared by DiffForEdit.
type Field struct {
	Label string
	Value func(*models.Shutdown) string
}

var (
	FieldTitle    = Field{"title", func(s *models.Shutdown) string { return s.Title }}
	FieldReason   = Field{"reason", func(s *models.Shutdown) string { return string(s.Reason) }}
	FieldAction   = Field{"action", func(s *models.Shutdown) string { return string(s.Action) }}
	FieldNotes    = Field{"notes", func(s *models.Shutdown) string { return s.Notes }}
	FieldFromCity = Field{"from city", func(s *models.Shutdown) string { return s.FromCity }}
	FieldToCity   = Field{"to city", func(s *models.Shutdown) string { return s.ToCity }}
	FieldRadius   = Field{"radius", func(s *models.Shutdown) string { return formatPtr(s.RadiusKm) }}
)

// TrackedFields lists the fields an edit of a given geometry can change, in
// the order they appear in the details string.
func TrackedFields(geom models.GeometryType, scheme styling.Scheme) []Field {
	fields := []Field{FieldTitle, FieldReason}
	if scheme == styling.SchemeAction {
		fields = append(fields, FieldAction)
	}
	fields = append(fields, FieldNotes)

	switch geom {
	case models.GeometryLine:
		fields = append(fields, FieldFromCity, FieldToCity)
	case models.GeometryCircle:
		fields = append(fields, FieldRadius)
	}
	return fields
}

// DiffForEdit names the tracked fields whose values differ between before and after.
func DiffForEdit(before, after *models.Shutdown, tracked []Field) string {
	var changed []string
	for _, f := range tracked {
		if f.Value(before) != f.Value(after) {
			changed = append(changed, f.Label)
		}
	}
	if len(changed) == 0 {
		return NoChanges
	}
	return "Updated " + strings.Join(changed, ", ")
}

func CreatedCircleDetails(radiusKm float64, city string) string {
	return "Created shutdown: " + CircleTitle(radiusKm, city)
}

func CreatedRoadDetails(from, to string) string {
	return "Created road shutdown: " + RoadTitle(from, to)
}

func CreatedShapeDetails(geom models.GeometryType, title string) string {
	return "Created " + string(geom) + " shutdown: " + title
}

const ClearedDetails = "Marked as cleared"

func CircleTitle(radiusKm float64, city string) string {
	return FormatKm(radiusKm) + "km radius of " + city
}

func RoadTitle(from, to string) string {
	return from + " to " + to
}

func FormatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CountAction returns how many entries of log carry action.
func CountAction(log []models.ActivityEntry, action models.ActivityAction) int {
	n := 0
	for _, e := range log {
		if e.Action == action {
			n++
		}
	}
	return n
}

func formatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatKm(*v)
}
