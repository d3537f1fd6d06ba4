package onet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-workers/internal/common/logger"
)

func TestClient_GetOccupationProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/online/occupations/15-1252.00/summary/skills", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		username, password, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "onet-user", username)
		assert.Equal(t, "onet-pass", password)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": "15-1252.00",
			"title": "Software Developers",
			"skills": [
				{"name": "Programming", "score": 4.5},
				{"name": "Critical Thinking", "score": 4.0}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:  server.URL,
		Username: "onet-user",
		Password: "onet-pass",
	}, logger.NewTestLogger(t))

	profile, err := client.GetOccupationProfile(context.Background(), "15-1252.00")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Software Developers", profile.Title)
	require.Len(t, profile.Benchmarks, 2)
	assert.Equal(t, "Programming", profile.Benchmarks[0].Name)
	assert.Equal(t, 4.5, profile.Benchmarks[0].Score)
}

func TestClient_GetOccupationProfile_NotFoundIsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL}, logger.NewTestLogger(t))

	profile, err := client.GetOccupationProfile(context.Background(), "99-9999.00")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestClient_GetOccupationProfile_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL}, logger.NewTestLogger(t))

	profile, err := client.GetOccupationProfile(context.Background(), "15-1252.00")
	require.Error(t, err)
	assert.Nil(t, profile)
}

func TestClient_GetOccupationProfile_FillsMissingCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title": "Registered Nurses", "skills": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL}, logger.NewTestLogger(t))

	profile, err := client.GetOccupationProfile(context.Background(), "29-1141.00")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "29-1141.00", profile.SOCCode)
}
