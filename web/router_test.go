package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRoutes = []Route{
	{Name: "home", Path: "/", Methods: []string{http.MethodGet}, Controller: "controller.home"},
	{Name: "user", Path: "/users/{id}", Methods: []string{http.MethodGet}, Controller: "controller.user"},
	{Name: "create", Path: "/users", Methods: []string{http.MethodPost}, Controller: "controller.create"},
}

func testRequest(method, target string) *Request {
	return NewRequest(httptest.NewRequest(method, target, nil), nil, SessionOptions{})
}

func TestMuxRouter_Match(t *testing.T) {
	router, err := NewMuxRouter(testRoutes)
	require.NoError(t, err)

	match, err := router.Match(testRequest(http.MethodGet, "/users/42"))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "user", match.Name)
	assert.Equal(t, "controller.user", match.Controller)
	assert.Equal(t, "42", match.Params["id"])
}

func TestMuxRouter_NoMatchIsSoft(t *testing.T) {
	router, err := NewMuxRouter(testRoutes)
	require.NoError(t, err)

	match, err := router.Match(testRequest(http.MethodGet, "/missing"))
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestMuxRouter_MethodMismatch(t *testing.T) {
	router, err := NewMuxRouter(testRoutes)
	require.NoError(t, err)

	match, err := router.Match(testRequest(http.MethodDelete, "/users"))
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestMuxRouter_Validation(t *testing.T) {
	_, err := NewMuxRouter([]Route{{Path: "/x", Controller: "c"}})
	assert.Error(t, err, "missing name")

	_, err = NewMuxRouter([]Route{{Name: "x", Path: "/x"}})
	assert.Error(t, err, "missing controller")

	_, err = NewMuxRouter([]Route{
		{Name: "x", Path: "/x", Controller: "c"},
		{Name: "x", Path: "/y", Controller: "c"},
	})
	assert.Error(t, err, "duplicate name")
}

func TestChiRouter_Match(t *testing.T) {
	router, err := NewChiRouter(testRoutes)
	require.NoError(t, err)

	match, err := router.Match(testRequest(http.MethodGet, "/users/42"))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "user", match.Name)
	assert.Equal(t, "controller.user", match.Controller)
	assert.Equal(t, "42", match.Params["id"])
}

func TestChiRouter_NoMatchIsSoft(t *testing.T) {
	router, err := NewChiRouter(testRoutes)
	require.NoError(t, err)

	match, err := router.Match(testRequest(http.MethodDelete, "/users/42"))
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestRouterFunc(t *testing.T) {
	always := RouterFunc(func(req *Request) (*RouteMatch, error) {
		return &RouteMatch{Name: "any", Controller: "c"}, nil
	})
	match, err := always.Match(testRequest(http.MethodGet, "/whatever"))
	require.NoError(t, err)
	assert.Equal(t, "any", match.Name)
}
