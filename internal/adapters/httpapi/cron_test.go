package httpapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/adapters/httpapi"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/test/helpers"
)

func TestCronTick_DisabledWithoutToken(t *testing.T) {
	s := newTestServer(t, httpapi.CronConfig{})

	rec := s.do(t, http.MethodGet, "/cron/tick?token=anything", "", false)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCronTick_RejectsWrongToken(t *testing.T) {
	s := newTestServer(t, httpapi.CronConfig{Token: "s3cret", Rate: 100, Burst: 10})

	for _, path := range []string{"/cron/tick", "/cron/tick?token=s3cre", "/cron/tick?token=s3cret2"} {
		rec := s.do(t, http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestCronTick_RunsSweep(t *testing.T) {
	// Arrange
	s := newTestServer(t, httpapi.CronConfig{Token: "s3cret", Rate: 100, Burst: 10})
	_, err := s.world.AddConstruction(s.grids[0], helpers.BuildingMiner, -time.Minute)
	require.NoError(t, err)

	// Act
	rec := s.do(t, http.MethodGet, "/cron/tick?token=s3cret", "", false)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decodeBody(t, rec)
	assert.Equal(t, true, report["lock_acquired"])
	assert.Equal(t, float64(1), report["processed"])
	assert.Equal(t, int64(0), s.world.Count("constructions"))
}

func TestCronTick_RateLimited(t *testing.T) {
	s := newTestServer(t, httpapi.CronConfig{Token: "s3cret", Rate: 0.001, Burst: 1})

	first := s.do(t, http.MethodGet, "/cron/tick?token=s3cret", "", false)
	second := s.do(t, http.MethodGet, "/cron/tick?token=s3cret", "", false)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestCronTick_LockHeldIsTooManyRequests(t *testing.T) {
	s := newTestServer(t, httpapi.CronConfig{Token: "s3cret", Rate: 100, Burst: 10})
	opts := completion.DefaultSweepOptions()
	ok, err := s.locker.Acquire(context.Background(), opts.LockKey, "someone-else", opts.LockTTL)
	require.NoError(t, err)
	require.True(t, ok)

	rec := s.do(t, http.MethodGet, "/cron/tick?token=s3cret", "", false)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["lock_acquired"])
}
