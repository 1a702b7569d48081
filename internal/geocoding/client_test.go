package geocoding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shutdown-tracker/internal/errs"
)

func newTestServer(t *testing.T, status int, result string) (*httptest.Server, *invokeRequest) {
	t.Helper()
	got := new(invokeRequest)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"result":` + result + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestGeocodeCity(t *testing.T) {
	srv, req := newTestServer(t, http.StatusOK,
		`{"name":"Winnipeg","region":"Manitoba","latitude":49.8951,"longitude":-97.1384}`)
	c := NewClient(Options{URL: srv.URL, APIKey: "secret"})

	p, err := c.GeocodeCity(context.Background(), " Winnipeg ")
	require.NoError(t, err)
	assert.Equal(t, Place{Name: "Winnipeg", Region: "Manitoba", Latitude: 49.8951, Longitude: -97.1384}, p)
	assert.Contains(t, req.Prompt, `Canadian city "Winnipeg"`)
	assert.JSONEq(t, string(citySchema), string(req.ResponseJSONSchema))
}

func TestGeocodeRoute(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{
		"from_city":{"name":"Winnipeg","region":"Manitoba","latitude":49.9,"longitude":-97.1},
		"to_city":{"name":"Brandon","region":"Manitoba","latitude":49.8,"longitude":-99.9}}`)
	c := NewClient(Options{URL: srv.URL, APIKey: "secret"})

	from, to, err := c.GeocodeRoute(context.Background(), "Winnipeg", "Brandon")
	require.NoError(t, err)
	assert.Equal(t, "Winnipeg", from.Name)
	assert.Equal(t, "Brandon", to.Name)
	assert.Equal(t, -99.9, to.Longitude)
}

func TestGeocodeCity_SchemaMismatch(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"name":"Nowhere","region":"","latitude":120}`)
	c := NewClient(Options{URL: srv.URL, APIKey: "secret"})

	_, err := c.GeocodeCity(context.Background(), "Nowhere")
	require.Error(t, err)
	assert.True(t, errs.IsGeocoding(err))
}

func TestGeocodeCity_UpstreamError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadGateway, `null`)
	c := NewClient(Options{URL: srv.URL, APIKey: "secret"})

	_, err := c.GeocodeCity(context.Background(), "Winnipeg")
	assert.True(t, errs.IsGeocoding(err))
}

func TestGeocode_BlankNamesRejectedBeforeCall(t *testing.T) {
	c := NewClient(Options{URL: "http://127.0.0.1:0"})

	_, err := c.GeocodeCity(context.Background(), "  ")
	assert.True(t, errs.IsValidation(err))

	_, _, err = c.GeocodeRoute(context.Background(), "Winnipeg", "")
	require.True(t, errs.IsValidation(err))
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"to_city"}, e.Fields)
}
