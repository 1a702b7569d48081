package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shutdown-tracker/internal/errs"
	"shutdown-tracker/internal/geocoding"
	mdlwr "shutdown-tracker/internal/middleware"
	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/services"
	"shutdown-tracker/internal/store/memory"
)

type stubGeocoder struct{}

func (stubGeocoder) GeocodeCity(_ context.Context, city string) (geocoding.Place, error) {
	if city != "Winnipeg" {
		return geocoding.Place{}, errs.Geocoding("geocode city", "could not find coordinates for the given city", nil)
	}
	return geocoding.Place{Name: "Winnipeg", Region: "Manitoba", Latitude: 49.9, Longitude: -97.1}, nil
}

func (stubGeocoder) GeocodeRoute(_ context.Context, from, to string) (geocoding.Place, geocoding.Place, error) {
	return geocoding.Place{Name: from, Region: "Manitoba", Latitude: 49.9, Longitude: -97.1},
		geocoding.Place{Name: to, Region: "Manitoba", Latitude: 49.8, Longitude: -99.9}, nil
}

var (
	testEditor = &models.User{ID: uuid.New(), Email: "editor@example.com", AccessLevel: models.AccessUser}
	testDriver = &models.User{ID: uuid.New(), Email: "driver@example.com"}
)

func addChiURLParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body=%s", rr.Body.String())
	return out
}

func newShutdownHandler() *ShutdownHandler {
	svc := services.NewShutdownService(memory.NewShutdownStore(), stubGeocoder{}, zap.NewNop(), services.ShutdownOptions{})
	return NewShutdownHandler(svc, zap.NewNop())
}

func as(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(mdlwr.WithUser(r.Context(), u))
}

func createVia(t *testing.T, h *ShutdownHandler, body string) models.Shutdown {
	t.Helper()
	req := as(httptest.NewRequest(http.MethodPost, "/api/v1/shutdowns", bytes.NewBufferString(body)), testEditor)
	rr := httptest.NewRecorder()
	h.Create(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeJSON[models.Shutdown](t, rr)
}

func TestCreateShutdown_Created(t *testing.T) {
	h := newShutdownHandler()
	rec := createVia(t, h, `{"city":"Winnipeg","radius_km":200,"reason":"weather"}`)
	assert.Equal(t, "200km radius of Winnipeg", rec.Title)
	assert.Equal(t, models.GeometryCircle, rec.GeometryType)
}

func TestCreateShutdown_ErrorStatuses(t *testing.T) {
	h := newShutdownHandler()
	cases := []struct {
		name string
		user *models.User
		body string
		want int
	}{
		{"invalid json", testEditor, `{`, http.StatusBadRequest},
		{"validation", testEditor, `{"city":"Winnipeg","radius_km":-1,"reason":"weather"}`, http.StatusBadRequest},
		{"geocoding", testEditor, `{"city":"Atlantis","radius_km":5,"reason":"weather"}`, http.StatusUnprocessableEntity},
		{"permission", testDriver, `{"city":"Winnipeg","radius_km":5,"reason":"weather"}`, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := as(httptest.NewRequest(http.MethodPost, "/api/v1/shutdowns", bytes.NewBufferString(tc.body)), tc.user)
			rr := httptest.NewRecorder()
			h.Create(rr, req)
			assert.Equal(t, tc.want, rr.Code, rr.Body.String())
			body := decodeJSON[errorResponse](t, rr)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestClearShutdown_TwiceConflicts(t *testing.T) {
	h := newShutdownHandler()
	rec := createVia(t, h, `{"city":"Winnipeg","radius_km":20,"reason":"weather"}`)

	clear := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shutdowns/"+rec.ID.String()+"/clear", nil)
		req = as(addChiURLParam(req, "id", rec.ID.String()), testEditor)
		rr := httptest.NewRecorder()
		h.Clear(rr, req)
		return rr
	}

	rr := clear()
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.StatusCleared, decodeJSON[models.Shutdown](t, rr).Status)

	rr = clear()
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUpdateShutdown(t *testing.T) {
	h := newShutdownHandler()
	rec := createVia(t, h, `{"city":"Winnipeg","radius_km":20,"reason":"weather"}`)

	req := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{"title":"Storm","reason":"accident"}`))
	req = as(addChiURLParam(req, "id", rec.ID.String()), testEditor)
	rr := httptest.NewRecorder()
	h.Update(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	got := decodeJSON[models.Shutdown](t, rr)
	require.Len(t, got.ActivityLog, 2)
	assert.Equal(t, "Updated title, reason", got.ActivityLog[1].Details)
}

func TestGetShutdown_BadAndMissingID(t *testing.T) {
	h := newShutdownHandler()

	rr := httptest.NewRecorder()
	h.Get(rr, addChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "nope"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.Get(rr, addChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteShutdown_RequiresConfirm(t *testing.T) {
	h := newShutdownHandler()
	rec := createVia(t, h, `{"city":"Winnipeg","radius_km":20,"reason":"weather"}`)

	del := func(query string) int {
		req := httptest.NewRequest(http.MethodDelete, "/"+query, nil)
		req = as(addChiURLParam(req, "id", rec.ID.String()), testEditor)
		rr := httptest.NewRecorder()
		h.Delete(rr, req)
		return rr.Code
	}
	assert.Equal(t, http.StatusBadRequest, del(""))
	assert.Equal(t, http.StatusNoContent, del("?confirm=true"))
	assert.Equal(t, http.StatusNotFound, del("?confirm=true"))
}

func TestListAndMap(t *testing.T) {
	h := newShutdownHandler()
	a := createVia(t, h, `{"city":"Winnipeg","radius_km":20,"reason":"weather"}`)
	createVia(t, h, `{"from_city":"Winnipeg","to_city":"Brandon","reason":"accident"}`)

	rr := httptest.NewRecorder()
	h.List(rr, as(httptest.NewRequest(http.MethodGet, "/?search=brandon", nil), testDriver))
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeJSON[services.ListView](t, rr)
	require.Len(t, list.Shutdowns, 1)
	assert.Equal(t, "Winnipeg to Brandon", list.Shutdowns[0].Title)
	assert.Equal(t, []string{"Manitoba"}, list.Regions)
	assert.Equal(t, 2, list.Summary.Total)

	rr = httptest.NewRecorder()
	h.Map(rr, httptest.NewRequest(http.MethodGet, "/?hovered="+a.ID.String(), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID         string `json:"id"`
			Properties struct {
				Style struct {
					Weight int `json:"weight"`
				} `json:"style"`
			} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	for _, f := range fc.Features {
		if f.ID == a.ID.String() {
			assert.Equal(t, 3, f.Properties.Style.Weight)
		}
	}
}

func TestLegend(t *testing.T) {
	h := newShutdownHandler()
	rr := httptest.NewRecorder()
	h.Legend(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeJSON[map[string]any](t, rr)
	assert.Equal(t, "action", got["scheme"])
}
