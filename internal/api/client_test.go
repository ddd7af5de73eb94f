package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthcheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthcheck", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	assert.NoError(t, c.Healthcheck())
}

func TestHealthcheck_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	assert.Error(t, c.Healthcheck())
}

func TestFetchCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/swaps/catalog", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		fmt.Fprint(w, `{
			"engines": [
				{"id": 7, "name": "V8", "rating": 5, "enabled": true, "soundId": "v8_sound",
				 "curve": {"maxTorque": 600, "turboPressure": 1.2}}
			],
			"eligibility": [
				{"modelKey": "muscle", "rating": 5}
			]
		}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	payload, err := c.FetchCatalog(context.Background())
	require.NoError(t, err)

	require.Len(t, payload.Engines, 1)
	assert.Equal(t, 7, payload.Engines[0].ID)
	assert.Equal(t, "V8", payload.Engines[0].Name)
	assert.Equal(t, float32(1.2), payload.Engines[0].Curve.TurboPressure)
	require.Len(t, payload.Eligibility, 1)
	assert.Equal(t, "muscle", payload.Eligibility[0].ModelKey)
}

func TestFetchCatalog_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"engines": [], "eligibility": []}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchCatalog_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.FetchCatalog(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(maxFetchAttempts), calls.Load())
}

func TestCheckEntitlement_Granted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/entitlements/swaps", r.URL.Path)
		fmt.Fprint(w, `{"granted": true}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	granted, err := c.CheckEntitlement(context.Background(), "swaps")
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestCheckEntitlement_Denied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	granted, err := c.CheckEntitlement(context.Background(), "swaps")
	require.NoError(t, err)
	assert.False(t, granted)
}
