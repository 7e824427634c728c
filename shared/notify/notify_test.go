package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"

	"github.com/dracory/querybase/shared/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []notify.Event
	err    error
}

func (r *recorder) Notify(_ context.Context, e notify.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestTrigger(t *testing.T) {
	rec := &recorder{}
	trig := notify.Trigger{Notifier: rec, OnSuccess: true}

	require.NoError(t, trig.Notify(context.Background(), notify.Event{Status: "success"}))
	require.NoError(t, trig.Notify(context.Background(), notify.Event{Status: "failed"}))
	require.Len(t, rec.events, 1)
	assert.Equal(t, "success", rec.events[0].Status)
}

func TestMulti_CollectsErrors(t *testing.T) {
	a := &recorder{err: errors.New("smtp down")}
	b := &recorder{}
	c := &recorder{err: errors.New("webhook down")}

	err := notify.Multi{a, b, c}.Notify(context.Background(), notify.Event{Status: "success"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Contains(t, err.Error(), "webhook down")
	assert.Len(t, b.events, 1, "later notifiers still run")

	assert.NoError(t, notify.Multi{b}.Notify(context.Background(), notify.Event{}))
}

func TestEmail(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	e := &notify.Email{
		Host: "smtp.local",
		Port: 2525,
		From: "bot@example.com",
		SendMail: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
			return nil
		},
	}

	err := e.Notify(context.Background(), notify.Event{
		QueryName:     "daily",
		Status:        "failed",
		ExecutionTime: 1.5,
		ErrorMessage:  "timeout",
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"bot@example.com"}, gotTo, "defaults to sending to self")
	assert.Contains(t, string(gotMsg), "Subject: Query daily finished: failed")
	assert.Contains(t, string(gotMsg), "Duration: 1.50s")
	assert.Contains(t, string(gotMsg), "Error: timeout")
}

func TestWebhook(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := &notify.Webhook{URL: srv.URL}
	err := w.Notify(context.Background(), notify.Event{QueryID: 3, QueryName: "daily", Status: "success", ResultCount: 4})
	require.NoError(t, err)
	assert.Equal(t, "query_execution", payload["event"])
	assert.Equal(t, "daily", payload["query_name"])
	assert.EqualValues(t, 4, payload["result_count"])
}

func TestWebhook_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := (&notify.Webhook{URL: srv.URL}).Notify(context.Background(), notify.Event{})
	assert.ErrorContains(t, err, "unexpected status 502")
}
