package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/correx/internal/shared"
	tu "github.com/desertthunder/correx/internal/testing"
)

func newTestAPI(baseURL string, client *http.Client) *APIService {
	return NewAPIService(shared.APIConfig{BaseURL: baseURL}, client, nil)
}

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{Timeout: time.Second}
			srv := newTestAPI("http://example.com/", customClient)

			if srv.BaseURL() != "http://example.com" {
				t.Errorf("expected trailing slash to be trimmed, got %s", srv.BaseURL())
			}
			if srv.httpClient == customClient {
				t.Error("expected custom client to be copied, not shared")
			}
			if srv.httpClient.Timeout != time.Second {
				t.Errorf("expected client timeout to be kept, got %v", srv.httpClient.Timeout)
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := newTestAPI("", nil)

			if srv.BaseURL() != "http://127.0.0.1:3000" {
				t.Errorf("expected default baseURL, got %s", srv.BaseURL())
			}
		})

		t.Run("With Timeout And Rate Limit", func(t *testing.T) {
			srv := NewAPIService(shared.APIConfig{
				BaseURL:   "http://example.com",
				Timeout:   shared.Duration{Duration: 2 * time.Second},
				RateLimit: 4,
			}, nil, nil)

			if srv.httpClient.Timeout != 2*time.Second {
				t.Errorf("expected timeout 2s, got %v", srv.httpClient.Timeout)
			}
			if srv.limiter == nil {
				t.Error("expected rate limiter to be configured")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/correction/104" {
					t.Errorf("expected path '/correction/104', got %s", r.URL.Path)
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]int{"id": 104})
			}))
			defer server.Close()

			resp, err := newTestAPI(server.URL, nil).Get(context.Background(), "/correction/104")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected 2xx status, got %d", resp.StatusCode)
			}
			if !resp.IsJSON || resp.JSONData == nil {
				t.Error("expected JSON data to be populated")
			}
		})

		t.Run("Successful Request With Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			resp, err := newTestAPI(server.URL, nil).Get(context.Background(), "/test")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response to not be JSON")
			}
			if string(resp.Body) != "plain text response" {
				t.Errorf("expected body 'plain text response', got %s", string(resp.Body))
			}
		})

		t.Run("Sends Credentials", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer secret" {
					t.Errorf("expected bearer token, got %q", got)
				}
				if got := r.Header.Get("Cookie"); got != "session=abc" {
					t.Errorf("expected cookie, got %q", got)
				}
				if got := r.Header.Get("X-Client"); got != "correx" {
					t.Errorf("expected extra header, got %q", got)
				}
				w.Write([]byte("{}"))
			}))
			defer server.Close()

			srv := NewAPIService(shared.APIConfig{
				BaseURL: server.URL,
				Token:   "secret",
				Cookie:  "session=abc",
				Headers: map[string]string{"X-Client": "correx"},
			}, nil, nil)

			if _, err := srv.Get(context.Background(), "/correction/1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			_, err := newTestAPI("http://example.com", nil).Get(context.Background(), "/test\x00invalid")

			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			_, err := newTestAPI("http://example.com", client).Get(context.Background(), "/test")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			_, err := newTestAPI("http://example.com", client).Get(context.Background(), "/test")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := newTestAPI(server.URL, nil).Get(ctx, "/test")
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST method, got %s", r.Method)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
			}

			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"test":"data"}` {
				t.Errorf("unexpected request body %s", body)
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		resp, err := newTestAPI(server.URL, nil).Post(context.Background(), "/test", []byte(`{"test":"data"}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("expected status 201, got %d", resp.StatusCode)
		}
	})
}

func TestAPIError(t *testing.T) {
	tc := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, shared.ErrNotFound},
		{http.StatusBadRequest, shared.ErrValidation},
		{http.StatusUnprocessableEntity, shared.ErrValidation},
		{http.StatusUnauthorized, shared.ErrNotAuthenticated},
		{http.StatusForbidden, shared.ErrNotAuthenticated},
		{http.StatusInternalServerError, shared.ErrServerError},
		{http.StatusBadGateway, shared.ErrServerError},
		{http.StatusServiceUnavailable, shared.ErrServiceUnavailable},
		{http.StatusTeapot, shared.ErrAPIRequest},
	}

	for _, tt := range tc {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := error(&APIError{StatusCode: tt.status, Path: "/correction/1"})
			if !errors.Is(err, tt.want) {
				t.Errorf("status %d: expected %v, got %v", tt.status, tt.want, err)
			}
		})
	}

	t.Run("Message From Body", func(t *testing.T) {
		resp := &APIResponse{StatusCode: 404, Body: []byte(`{"message":"Correction not found"}`), IsJSON: true}
		apiErr := newAPIError("/correction/9", resp)

		if apiErr.Message != "Correction not found" {
			t.Errorf("expected message from body, got %q", apiErr.Message)
		}
		if !strings.Contains(apiErr.Error(), "404 Correction not found") {
			t.Errorf("unexpected error text %q", apiErr.Error())
		}
		if !NotFound(apiErr) {
			t.Error("expected NotFound to match")
		}
	})
}

func TestDecodeData(t *testing.T) {
	t.Run("Bare", func(t *testing.T) {
		var v struct{ ID int }
		if err := decodeData([]byte(`{"id":7}`), &v); err != nil || v.ID != 7 {
			t.Errorf("decodeData() = %+v, %v", v, err)
		}
	})

	t.Run("Envelope", func(t *testing.T) {
		var v []int
		if err := decodeData([]byte(`{"status":"ok","data":[1,2]}`), &v); err != nil || len(v) != 2 {
			t.Errorf("decodeData() = %v, %v", v, err)
		}
	})

	t.Run("Envelope With Null Data", func(t *testing.T) {
		v := new(int)
		*v = 3
		if err := decodeData([]byte(`{"status":"ok","data":null}`), &v); err != nil || v != nil {
			t.Errorf("expected nil pointer, got %v, %v", v, err)
		}
	})

	t.Run("Object With Data Field Only", func(t *testing.T) {
		var v struct{ Data string }
		if err := decodeData([]byte(`{"data":"kept"}`), &v); err != nil || v.Data != "kept" {
			t.Errorf("decodeData() = %+v, %v", v, err)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		var v struct{ ID int }
		if err := decodeData([]byte(`not json`), &v); !errors.Is(err, shared.ErrInvalidResponse) {
			t.Errorf("expected ErrInvalidResponse, got %v", err)
		}
	})
}
