package syncgw

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridline/internal/record"
	"github.com/roach88/gridline/internal/testutil"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
}

func testGateway(base string) *HTTPGateway {
	return NewHTTPGateway(base,
		WithTokenGenerator(testutil.NewFixedTokenGenerator()),
		WithNow(fixedNow),
		WithRand(rand.New(rand.NewSource(1))),
	)
}

func TestFetch_MapsSourceRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(TokenHeader))
		_, _ = w.Write([]byte(`[
			{"id": 1, "name": "Alice", "age": 34, "address": {"city": "Oslo"}, "date": "12/03/2021"},
			{"id": 2, "name": "Bob", "address": {"city": ""}}
		]`))
	}))
	defer srv.Close()

	records, err := testGateway(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, record.Record{ID: 1, Name: "Alice", Age: 34, Country: "Oslo", Date: "12/03/2021"}, records[0])

	// Absent fields are filled with generated defaults.
	got := records[1]
	assert.Equal(t, "Unknown", got.Country, "blank city falls back to Unknown")
	assert.GreaterOrEqual(t, got.Age, 20)
	assert.Less(t, got.Age, 70)

	date, err := time.Parse("02/01/2006", got.Date)
	require.NoError(t, err, "generated date is display-formatted")
	assert.False(t, date.Before(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, date.After(fixedNow()))
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testGateway(srv.URL).Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := testGateway(srv.URL).Fetch(context.Background())
	assert.Error(t, err)
}

func TestSubmit_CreateWireShape(t *testing.T) {
	var gotBody payload
	var gotMethod, gotPath, gotToken string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotToken = r.Header.Get(TokenHeader)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		// Server-assigned identity in the response body is ignored by
		// the core; the client keeps its own id.
		_, _ = w.Write([]byte(`{"id": 9001}`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, WithTokenGenerator(testutil.NewFixedTokenGenerator("tok-1")))
	rec := record.Record{ID: 13, Name: "New Name", Age: 25, Country: "Country", Date: "01/06/2024"}

	res := gw.Submit(context.Background(), rec, IntentCreate)
	require.NoError(t, res.Err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, 13, res.RecordID, "result keeps the client-minted id")

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/users", gotPath)
	assert.Equal(t, "tok-1", gotToken)
	assert.Equal(t, payload{
		Name:    "New Name",
		Age:     25,
		Address: address{City: "Country"},
		Date:    "01/06/2024",
	}, gotBody)
}

func TestSubmit_UpdateKeyedByID(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gw := testGateway(srv.URL)
	res := gw.Submit(context.Background(), record.Record{ID: 7, Name: "x"}, IntentUpdate)
	require.NoError(t, res.Err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/users/7", gotPath)
}

func TestSubmit_DeleteSendsOnlyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/users/3", r.URL.Path)
		body := make([]byte, 1)
		n, _ := r.Body.Read(body)
		assert.Zero(t, n, "delete carries no body")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res := testGateway(srv.URL).Submit(context.Background(), record.Record{ID: 3}, IntentDelete)
	assert.NoError(t, res.Err)
}

// Non-success statuses and transport errors are the same failure class.
func TestSubmit_FailureModes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := testGateway(srv.URL).Submit(context.Background(), record.Record{ID: 1}, IntentUpdate)
	assert.Error(t, res.Err)
	assert.Equal(t, IntentUpdate, res.Intent)

	srv.Close()
	res = testGateway(srv.URL).Submit(context.Background(), record.Record{ID: 1}, IntentDelete)
	assert.Error(t, res.Err)
}

func TestSubmit_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := testGateway(srv.URL).Submit(ctx, record.Record{ID: 1}, IntentUpdate)
	assert.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, context.Canceled))
}

func TestIntent_String(t *testing.T) {
	assert.Equal(t, "create", IntentCreate.String())
	assert.Equal(t, "update", IntentUpdate.String())
	assert.Equal(t, "delete", IntentDelete.String())
}
