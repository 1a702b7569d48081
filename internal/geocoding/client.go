// Package geocoding resolves free-text city names to coordinates through an
// LLM-backed lookup endpoint that answers in a caller-supplied JSON schema.
package geocoding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"shutdown-tracker/internal/errs"
)

// Place is one resolved city.
type Place struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder is what the lifecycle service needs from the lookup collaborator.
type Geocoder interface {
	GeocodeCity(ctx context.Context, city string) (Place, error)
	GeocodeRoute(ctx context.Context, from, to string) (Place, Place, error)
}

const placeSchema = `{
  "type": "object",
  "properties": {
    "name":      {"type": "string", "minLength": 1},
    "region":    {"type": "string"},
    "latitude":  {"type": "number", "minimum": -90, "maximum": 90},
    "longitude": {"type": "number", "minimum": -180, "maximum": 180}
  },
  "required": ["name", "region", "latitude", "longitude"]
}`

var (
	citySchema  = json.RawMessage(placeSchema)
	routeSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "from_city": ` + placeSchema + `,
    "to_city": ` + placeSchema + `
  },
  "required": ["from_city", "to_city"]
}`)

	cityLoader  = gojsonschema.NewBytesLoader(citySchema)
	routeLoader = gojsonschema.NewBytesLoader(routeSchema)
)

type Client struct {
	baseURL    string
	apiKey     string
	country    string
	httpClient *http.Client
}

type Options struct {
	URL     string
	APIKey  string
	Country string // adjective used in the prompt, e.g. "Canadian"
	Timeout time.Duration
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	country := opts.Country
	if country == "" {
		country = "Canadian"
	}
	return &Client{
		baseURL:    opts.URL,
		apiKey:     opts.APIKey,
		country:    country,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type invokeRequest struct {
	Prompt             string          `json:"prompt"`
	ResponseJSONSchema json.RawMessage `json:"response_json_schema"`
}

type invokeResponse struct {
	Result json.RawMessage `json:"result"`
}

type routeResult struct {
	FromCity Place `json:"from_city"`
	ToCity   Place `json:"to_city"`
}

func (c *Client) GeocodeCity(ctx context.Context, city string) (Place, error) {
	const op = "geocode city"
	city = strings.TrimSpace(city)
	if city == "" {
		return Place{}, errs.Validation(op, "city name is required", "city")
	}

	prompt := fmt.Sprintf(
		"Find the coordinates for the %s city %q. Return the official city name, "+
			"its province or state as region, and its latitude and longitude in decimal degrees.",
		c.country, city)

	var p Place
	if err := c.invoke(ctx, op, prompt, citySchema, cityLoader, &p); err != nil {
		return Place{}, err
	}
	return p, nil
}

func (c *Client) GeocodeRoute(ctx context.Context, from, to string) (Place, Place, error) {
	const op = "geocode route"
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	var missing []string
	if from == "" {
		missing = append(missing, "from_city")
	}
	if to == "" {
		missing = append(missing, "to_city")
	}
	if len(missing) > 0 {
		return Place{}, Place{}, errs.Validation(op, "both city names are required", missing...)
	}

	prompt := fmt.Sprintf(
		"Find the coordinates for two %s cities: %q (from_city) and %q (to_city). "+
			"For each return the official city name, its province or state as region, "+
			"and its latitude and longitude in decimal degrees.",
		c.country, from, to)

	var r routeResult
	if err := c.invoke(ctx, op, prompt, routeSchema, routeLoader, &r); err != nil {
		return Place{}, Place{}, err
	}
	return r.FromCity, r.ToCity, nil
}

// invoke posts the prompt, checks the answer against schema and decodes it into out.
func (c *Client) invoke(ctx context.Context, op, prompt string, schema json.RawMessage, loader gojsonschema.JSONLoader, out interface{}) error {
	body, err := json.Marshal(invokeRequest{Prompt: prompt, ResponseJSONSchema: schema})
	if err != nil {
		return errs.Geocoding(op, "could not build lookup request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return errs.Geocoding(op, "could not build lookup request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Geocoding(op, "location lookup failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errs.Geocoding(op, "location lookup failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return errs.Geocoding(op, "location lookup failed",
			fmt.Errorf("geocoder returned status %d", resp.StatusCode))
	}

	var env invokeResponse
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Result) == 0 {
		return errs.Geocoding(op, "location lookup returned an unreadable answer", err)
	}

	res, err := gojsonschema.Validate(loader, gojsonschema.NewBytesLoader(env.Result))
	if err != nil {
		return errs.Geocoding(op, "location lookup returned an unreadable answer", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return errs.Geocoding(op, "could not find coordinates for the given city",
			fmt.Errorf("schema: %s", strings.Join(msgs, "; ")))
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return errs.Geocoding(op, "location lookup returned an unreadable answer", err)
	}
	return nil
}
