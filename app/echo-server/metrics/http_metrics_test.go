package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_RecordsRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/orders/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	before := testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "/orders/:id", "204"))

	for _, path := range []string{"/orders/1", "/orders/2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	after := testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "/orders/:id", "204"))
	assert.Equal(t, before+2, after)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "/boom", "418")))
}
