package mux

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"trickmatch-server/pkg/referee"
	"trickmatch-server/pkg/room"
	"trickmatch-server/pkg/store"

	"github.com/stretchr/testify/assert"
)

// newTestServer starts a server backed by an in-memory store and a running hub
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts, _, _ := newTestServerWithHub(t)
	return ts
}

// newTestServerWithHub also returns the hub and a function stopping its run loop
func newTestServerWithHub(t *testing.T) (*httptest.Server, *room.Hub, func()) {
	t.Helper()

	logger, _ := test.NewNullLogger()
	hub := room.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.Run(ctx) }()

	ref := referee.New(store.NewMemory(), referee.Options{
		Notifier: hub,
		Logger:   logger,
		Now: func() time.Time {
			return time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		},
	})

	ts := httptest.NewServer(NewMux("v1.2.3", ref, hub, logger))
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})

	return ts, hub, cancel
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := ioutil.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return nil
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
			return nil
		}
	}

	return resp
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Error(err)
		return nil
	}

	return assertDo(t, req, respObj, statusCode)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			t.Error(err)
			return nil
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Error(err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	return assertDo(t, req, respObj, statusCode)
}
