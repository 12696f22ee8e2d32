package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestProm_GinMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewProm(prometheus.NewRegistry())

	r := gin.New()
	r.Use(p.GinHandleMiddleware())
	r.GET("/dashboard/pages/:tab", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, tab := range []string{"overview", "rooms"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/pages/"+tab, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "/dashboard/pages/:tab", "200")))
}

func TestProm_ObserveDBClassifiesErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	err := p.ObserveDB("storage_set", func() error { return &pgconn.PgError{Code: "23505"} })
	require.Error(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("storage_set", "unique_violation")))

	_ = p.ObserveDB("storage_set", func() error { return &pgconn.PgError{Code: "40001"} })
	require.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("storage_set", "pg_40001")))

	_ = p.ObserveDB("storage_get", func() error { return fmt.Errorf("get: %w", context.DeadlineExceeded) })
	require.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("storage_get", "timeout")))

	_ = p.ObserveDB("storage_get", func() error { return errors.New("dial tcp: connect: connection refused") })
	require.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("storage_get", "connection")))

	require.NoError(t, p.ObserveDB("storage_get", func() error { return nil }))
}

func TestProm_DomainCounters(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	p.ObserveLoginAttempt("ADMIN", "accepted")
	p.ObserveGeneration("pre-arrival", "ok", time.Second)
	p.ObserveSweep("challenges", 3)
	p.ObserveSweep("challenges", 0)

	p.EpisodeStarted("login")
	require.Equal(t, 1.0, testutil.ToFloat64(p.EpisodesActive.WithLabelValues("login")))
	p.EpisodeEnded("login", "committed", 2*time.Second)
	require.Equal(t, 0.0, testutil.ToFloat64(p.EpisodesActive.WithLabelValues("login")))

	require.Equal(t, 1.0, testutil.ToFloat64(p.LoginAttempts.WithLabelValues("ADMIN", "accepted")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.GenerationResults.WithLabelValues("pre-arrival", "ok")))
	require.Equal(t, 3.0, testutil.ToFloat64(p.SweptTotal.WithLabelValues("challenges")))
}

func TestProm_ObserveDBMissIsNotAnError(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	err := p.ObserveDB("storage_get", func() error { return pgx.ErrNoRows })
	require.ErrorIs(t, err, pgx.ErrNoRows)
	require.Equal(t, 0, testutil.CollectAndCount(p.DbErrorsTotal))
}
