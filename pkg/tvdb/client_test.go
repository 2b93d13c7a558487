// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tvdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/moviesbuddy/pkg/config"
)

// fakeTVDB is an httptest stand-in for the TVDB v4 API.
type fakeTVDB struct {
	*httptest.Server
	logins   atomic.Int32
	searches atomic.Int32

	loginStatus  int
	loginBody    string
	searchStatus int
	searchBody   string
	searchDelay  time.Duration

	lastLogin  map[string]string
	lastAuth   string
	lastValues map[string][]string
}

func newFakeTVDB(t *testing.T) *fakeTVDB {
	t.Helper()
	f := &fakeTVDB{
		loginStatus:  http.StatusOK,
		loginBody:    `{"status":"success","data":{"token":"tok-1"}}`,
		searchStatus: http.StatusOK,
		searchBody:   `{"status":"success","data":[]}`,
	}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			f.logins.Add(1)
			assert.Equal(t, http.MethodPost, r.Method)
			_ = json.NewDecoder(r.Body).Decode(&f.lastLogin)
			w.WriteHeader(f.loginStatus)
			_, _ = w.Write([]byte(f.loginBody))
		case "/search":
			f.searches.Add(1)
			assert.Equal(t, http.MethodGet, r.Method)
			f.lastAuth = r.Header.Get("Authorization")
			f.lastValues = r.URL.Query()
			if f.searchDelay > 0 {
				time.Sleep(f.searchDelay)
			}
			w.WriteHeader(f.searchStatus)
			_, _ = w.Write([]byte(f.searchBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeTVDB) client(opts ...Option) *Client {
	return New(Credentials{APIKey: "key", PIN: "1234"}, append([]Option{WithBaseURL(f.URL)}, opts...)...)
}

func TestClient_Authenticate(t *testing.T) {
	f := newFakeTVDB(t)
	c := f.client()

	assert.False(t, c.Authenticated())
	require.NoError(t, c.Authenticate(context.Background()))

	assert.True(t, c.Authenticated())
	assert.Equal(t, map[string]string{"apikey": "key", "pin": "1234"}, f.lastLogin)
}

func TestClient_AuthenticateReplacesToken(t *testing.T) {
	f := newFakeTVDB(t)
	c := f.client()

	require.NoError(t, c.Authenticate(context.Background()))
	f.loginBody = `{"data":{"token":"tok-2"}}`
	require.NoError(t, c.Authenticate(context.Background()))

	_, err := c.Search(context.Background(), Params{"query": "Dark"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-2", f.lastAuth)
	assert.Equal(t, int32(2), f.logins.Load())
}

func TestClient_AuthenticateFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"status":"failure","message":"invalid key"}`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"missing token", http.StatusOK, `{"status":"success","data":{}}`},
		{"missing envelope", http.StatusOK, `{"token":"top-level"}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeTVDB(t)
			f.loginStatus = tt.status
			f.loginBody = tt.body
			c := f.client()

			err := c.Authenticate(context.Background())

			var authErr *AuthenticationError
			require.True(t, errors.As(err, &authErr), "got %v", err)
			assert.False(t, c.Authenticated())
			assert.Equal(t, int32(1), f.logins.Load())
		})
	}
}

func TestClient_AuthenticateTransportFailure(t *testing.T) {
	f := newFakeTVDB(t)
	url := f.URL
	f.Close()

	c := New(Credentials{APIKey: "key", PIN: "1234"}, WithBaseURL(url))
	err := c.Authenticate(context.Background())

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.NotNil(t, authErr.Unwrap())
}

func TestClient_SearchBeforeAuthenticate(t *testing.T) {
	f := newFakeTVDB(t)
	c := f.client()

	_, err := c.Search(context.Background(), Params{"query": "Dark"})

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, int32(0), f.searches.Load())
}

func TestClient_Search(t *testing.T) {
	f := newFakeTVDB(t)
	f.searchBody = `{"status":"success","data":[{"name":"Foundation","year":"2021"}]}`
	c := f.client()
	require.NoError(t, c.Authenticate(context.Background()))

	year := 2021
	var nilYear *int
	resp, err := c.Search(context.Background(), Params{
		"query":   "Foundation",
		"limit":   10,
		"year":    &year,
		"type":    nil,
		"company": nilYear,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", f.lastAuth)
	assert.Equal(t, map[string][]string{
		"query": {"Foundation"},
		"limit": {"10"},
		"year":  {"2021"},
	}, f.lastValues)

	data, ok := resp["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 1)
}

func TestClient_SearchFailureIsNotRetried(t *testing.T) {
	f := newFakeTVDB(t)
	f.searchStatus = http.StatusServiceUnavailable
	c := f.client()
	require.NoError(t, c.Authenticate(context.Background()))

	_, err := c.Search(context.Background(), Params{"query": "Dark"})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, int32(1), f.searches.Load())
}

func TestClient_SearchUndecodableBody(t *testing.T) {
	f := newFakeTVDB(t)
	f.searchBody = `not json`
	c := f.client()
	require.NoError(t, c.Authenticate(context.Background()))

	_, err := c.Search(context.Background(), Params{"query": "Dark"})

	var reqErr *RequestError
	assert.True(t, errors.As(err, &reqErr))
}

func TestClient_SearchTimeout(t *testing.T) {
	f := newFakeTVDB(t)
	f.searchDelay = 300 * time.Millisecond
	c := f.client(WithTimeout(50 * time.Millisecond))
	require.NoError(t, c.Authenticate(context.Background()))

	start := time.Now()
	_, err := c.Search(context.Background(), Params{"query": "Dark"})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestNew_DoesNotMutateSuppliedHTTPClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Minute}
	New(Credentials{}, WithHTTPClient(hc), WithTimeout(time.Second))
	assert.Equal(t, time.Minute, hc.Timeout)
}

func TestLoadCredentials(t *testing.T) {
	creds, err := LoadCredentials(config.MapSource("explicit", map[string]string{
		"TVDB_API_KEY": " key ",
		"TVDB_PIN":     "1234",
	}))
	require.NoError(t, err)
	assert.Equal(t, Credentials{APIKey: "key", PIN: "1234"}, creds)

	_, err = LoadCredentials(config.MapSource("explicit", map[string]string{"TVDB_API_KEY": "key"}))
	var missing *config.MissingCredentialError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"TVDB_PIN"}, missing.Names)
}
