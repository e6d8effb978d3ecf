package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareTargetUnwrapsEnvelope(t *testing.T) {
	goSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"a","title":"x"},{"id":"b"}],"meta":{"count":2}}`))
	}))
	defer goSrv.Close()
	legacySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"a","title":"y"},{"id":"b"}]`))
	}))
	defer legacySrv.Close()

	comp := compareTarget(http.DefaultClient, goSrv.URL, legacySrv.URL, target{Path: "/offers", Critical: true, IDsOnly: true})
	require.NoError(t, comp.Error)
	assert.True(t, comp.StatusMatch)
	assert.True(t, comp.BodyMatch)
	assert.False(t, comp.breaking())

	comp = compareTarget(http.DefaultClient, goSrv.URL, legacySrv.URL, target{Path: "/offers", Critical: true})
	assert.False(t, comp.BodyMatch)
	assert.True(t, comp.breaking())
}

func TestIDsEqualIsOrderSensitive(t *testing.T) {
	assert.True(t, idsEqual([]byte(`[{"id":"1"},{"id":"2"}]`), []byte(`[{"id":"1"},{"id":"2"}]`)))
	assert.False(t, idsEqual([]byte(`[{"id":"2"},{"id":"1"}]`), []byte(`[{"id":"1"},{"id":"2"}]`)))
	assert.False(t, idsEqual([]byte(`{"id":"1"}`), []byte(`[{"id":"1"}]`)))
}

func TestBodiesEqualNormalizesNumbers(t *testing.T) {
	assert.True(t, bodiesEqual([]byte(`{"salary_to":15000.0}`), []byte(`{"salary_to":15000}`)))
}

func TestLoadTargets(t *testing.T) {
	targets, err := loadTargets("")
	require.NoError(t, err)
	assert.Equal(t, defaultTargets, targets)

	path := filepath.Join(t.TempDir(), "targets.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"targets":[{"method":"GET","path":"/offers/abc","critical":true}]}`), 0o600))
	targets, err = loadTargets(path)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "/offers/abc", targets[0].Path)

	require.NoError(t, os.WriteFile(path, []byte(`{"targets":[]}`), 0o600))
	_, err = loadTargets(path)
	assert.Error(t, err)
}
