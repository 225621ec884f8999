package profanity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyFilterMatchesNothing(t *testing.T) {
	f := NewFilter()
	assert.False(t, f.Contains("anything at all"))
}

func TestRefreshPlainTextSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Apple\nbanana\n\ncherry\n"))
	}))
	defer srv.Close()

	f := NewFilter()
	require.NoError(t, f.Refresh(context.Background(), nil, []string{srv.URL}))
	assert.Equal(t, 3, f.Size())
	assert.True(t, f.Contains("i ate an apple today"))
	assert.True(t, f.Contains("BANANA"))
	assert.False(t, f.Contains("pineapple")) // whole words only
}

func TestRefreshJSONSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`["apple", "banana"]`))
	}))
	defer srv.Close()

	f := NewFilter()
	require.NoError(t, f.Refresh(context.Background(), nil, []string{srv.URL}))
	assert.True(t, f.Contains("banana split"))
}

func TestRefreshSkipsFailingSource(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("apple"))
	}))
	defer good.Close()

	f := NewFilter()
	require.NoError(t, f.Refresh(context.Background(), nil, []string{bad.URL, good.URL}))
	assert.True(t, f.Contains("apple"))
}

func TestRefreshErrorsWhenNothingLoads(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	f := NewFilter()
	assert.Error(t, f.Refresh(context.Background(), nil, []string{bad.URL}))
}
