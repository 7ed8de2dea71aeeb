package mailer

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
)

func TestResend_Send_PostsJSONWithBearer(t *testing.T) {
	var got Email
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer re_123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	m := NewResend("re_123", WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))
	email := Email{
		From:    "site@example.com",
		To:      "me@example.com",
		Subject: "Portfolio Contact: Ann",
		ReplyTo: "ann@example.com",
		HTML:    "<p>hi</p>",
	}
	res, err := m.Send(context.Background(), email)

	require.NoError(t, err)
	require.Equal(t, "49a3999c-0ce1-4ea6-ab68-afcd6dc2e794", res.ID)
	require.Equal(t, email, got)
}

func TestResend_Send_ReturnsAPIErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	}))
	defer srv.Close()

	_, err := NewResend("k", WithEndpoint(srv.URL)).Send(context.Background(), Email{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	require.Equal(t, "validation_error", apiErr.Name)
	require.Equal(t, "Invalid from field", apiErr.Message)
}

func TestResend_Send_KeepsRawBodyWhenErrorIsNotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := NewResend("k", WithEndpoint(srv.URL)).Send(context.Background(), Email{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, "upstream down", apiErr.Message)
}

func TestResend_Send_AcceptedEvenIfBodyReadFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":`))
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler)
	}))
	defer srv.Close()

	res, err := NewResend("k", WithEndpoint(srv.URL), WithRate(0, 0)).Send(context.Background(), Email{})
	require.NoError(t, err)
	require.Empty(t, res.ID)
}

func TestResend_Send_NeverRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewResend("k", WithEndpoint(srv.URL)).Send(context.Background(), Email{})
	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load())
}

func TestResend_Send_RateWaitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x"}`))
	}))
	defer srv.Close()

	m := NewResend("k", WithEndpoint(srv.URL), WithRate(0.001, 1))
	_, err := m.Send(context.Background(), Email{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Send(ctx, Email{})
	require.Error(t, err)
}
