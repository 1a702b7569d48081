// Package filter derives the list and map subsets from the full record set.
package filter

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"shutdown-tracker/internal/models"
)

// All disables an equality clause.
const All = "all"

type Config struct {
	Search string
	Status string
	Reason string
	Region string
	// MineOnly keeps records created or touched by CurrentUser. It is ignored
	// when CurrentUser is empty.
	MineOnly    bool
	CurrentUser string
}

// Default is the config with every clause disabled.
func Default() Config {
	return Config{Status: All, Reason: All, Region: All}
}

// ParseConfig reads search, status, reason, region and mine from a query string.
func ParseConfig(q url.Values, currentUser string) Config {
	cfg := Default()
	cfg.Search = strings.TrimSpace(q.Get("search"))
	if v := q.Get("status"); v != "" {
		cfg.Status = v
	}
	if v := q.Get("reason"); v != "" {
		cfg.Reason = v
	}
	if v := q.Get("region"); v != "" {
		cfg.Region = v
	}
	cfg.MineOnly, _ = strconv.ParseBool(q.Get("mine"))
	cfg.CurrentUser = currentUser
	return cfg
}

// Records returns the records matching cfg in their original order.
func Records(records []models.Shutdown, cfg Config) []models.Shutdown {
	query := strings.ToLower(cfg.Search)
	out := make([]models.Shutdown, 0, len(records))
	for i := range records {
		if matches(&records[i], cfg, query) {
			out = append(out, records[i])
		}
	}
	return out
}

func matches(s *models.Shutdown, cfg Config, query string) bool {
	if query != "" &&
		!strings.Contains(strings.ToLower(s.Title), query) &&
		!strings.Contains(strings.ToLower(s.Notes), query) &&
		!strings.Contains(strings.ToLower(s.Region), query) {
		return false
	}
	if !equalOrAll(cfg.Status, string(s.Status)) {
		return false
	}
	if !equalOrAll(cfg.Reason, string(s.Reason)) {
		return false
	}
	if !equalOrAll(cfg.Region, s.Region) {
		return false
	}
	if cfg.MineOnly && cfg.CurrentUser != "" && !touchedBy(s, cfg.CurrentUser) {
		return false
	}
	return true
}

func equalOrAll(want, got string) bool {
	return want == "" || want == All || want == got
}

func touchedBy(s *models.Shutdown, user string) bool {
	if s.CreatedBy == user {
		return true
	}
	for _, e := range s.ActivityLog {
		if e.User == user {
			return true
		}
	}
	return false
}

// DistinctRegions returns the sorted unique non-empty regions of records.
func DistinctRegions(records []models.Shutdown) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range records {
		r := records[i].Region
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

type Summary struct {
	Active int `json:"active"`
	Total  int `json:"total"`
}

func Summarize(records []models.Shutdown) Summary {
	s := Summary{Total: len(records)}
	for i := range records {
		if records[i].Status == models.StatusActive {
			s.Active++
		}
	}
	return s
}
