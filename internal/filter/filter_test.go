package filter_test

import (
	"net/url"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shutdown-tracker/internal/filter"
	"shutdown-tracker/internal/models"
)

func fixture() []models.Shutdown {
	mk := func(title string, status models.Status, reason models.Reason, region, by string) models.Shutdown {
		return models.Shutdown{
			ID: uuid.New(), Title: title, Status: status, Reason: reason, Region: region, CreatedBy: by,
			ActivityLog: []models.ActivityEntry{{Action: models.ActivityCreated, User: by}},
		}
	}
	rs := []models.Shutdown{
		mk("Hwy 1 closure", models.StatusActive, models.ReasonWeather, "Manitoba", "a@x.ca"),
		mk("Crash near Regina", models.StatusCleared, models.ReasonAccident, "Saskatchewan", "b@x.ca"),
		mk("Bridge works", models.StatusActive, models.ReasonConstruction, "Manitoba", "b@x.ca"),
		mk("Blizzard", models.StatusCleared, models.ReasonWeather, "", "c@x.ca"),
		mk("Wildfire", models.StatusActive, models.ReasonFires, "Alberta", "c@x.ca"),
	}
	rs[3].Notes = "whiteout conditions near Brandon"
	rs[4].ActivityLog = append(rs[4].ActivityLog, models.ActivityEntry{Action: models.ActivityEdited, User: "a@x.ca"})
	return rs
}

func titles(rs []models.Shutdown) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Title)
	}
	return out
}

func TestRecords_DefaultIsIdentity(t *testing.T) {
	in := fixture()
	assert.Equal(t, in, filter.Records(in, filter.Default()))
	assert.Equal(t, in, filter.Records(in, filter.Config{}))
}

func TestRecords_StatusActiveKeepsOrder(t *testing.T) {
	cfg := filter.Default()
	cfg.Status = string(models.StatusActive)

	got := filter.Records(fixture(), cfg)
	assert.Equal(t, []string{"Hwy 1 closure", "Bridge works", "Wildfire"}, titles(got))
}

func TestRecords_Idempotent(t *testing.T) {
	cfg := filter.Default()
	cfg.Region = "Manitoba"
	cfg.Search = "o"

	once := filter.Records(fixture(), cfg)
	assert.Equal(t, once, filter.Records(once, cfg))
}

func TestRecords_SearchAnyField(t *testing.T) {
	cfg := filter.Default()

	cfg.Search = "BRANDON"
	assert.Equal(t, []string{"Blizzard"}, titles(filter.Records(fixture(), cfg)))

	cfg.Search = "saskat"
	assert.Equal(t, []string{"Crash near Regina"}, titles(filter.Records(fixture(), cfg)))

	cfg.Search = "bridge"
	assert.Equal(t, []string{"Bridge works"}, titles(filter.Records(fixture(), cfg)))
}

func TestRecords_Conjunction(t *testing.T) {
	cfg := filter.Default()
	cfg.Reason = string(models.ReasonWeather)
	cfg.Status = string(models.StatusCleared)

	assert.Equal(t, []string{"Blizzard"}, titles(filter.Records(fixture(), cfg)))
}

func TestRecords_MineOnly(t *testing.T) {
	cfg := filter.Default()
	cfg.MineOnly = true
	cfg.CurrentUser = "a@x.ca"
	assert.Equal(t, []string{"Hwy 1 closure", "Wildfire"}, titles(filter.Records(fixture(), cfg)))

	cfg.CurrentUser = ""
	assert.Len(t, filter.Records(fixture(), cfg), 5)
}

func TestDistinctRegions(t *testing.T) {
	got := filter.DistinctRegions(fixture())
	assert.Equal(t, []string{"Alberta", "Manitoba", "Saskatchewan"}, got)
	assert.True(t, sort.StringsAreSorted(got))

	assert.Empty(t, filter.DistinctRegions(nil))
}

func TestParseConfig(t *testing.T) {
	q := url.Values{"search": {"  hwy "}, "status": {"active"}, "mine": {"true"}}
	cfg := filter.ParseConfig(q, "a@x.ca")

	assert.Equal(t, "hwy", cfg.Search)
	assert.Equal(t, "active", cfg.Status)
	assert.Equal(t, filter.All, cfg.Reason)
	assert.Equal(t, filter.All, cfg.Region)
	assert.True(t, cfg.MineOnly)
	assert.Equal(t, "a@x.ca", cfg.CurrentUser)
}

func TestSummarize(t *testing.T) {
	s := filter.Summarize(fixture())
	require.Equal(t, 5, s.Total)
	assert.Equal(t, 3, s.Active)
}
