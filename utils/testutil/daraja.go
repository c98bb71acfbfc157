package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"adconnect/config"
)

// FakeDaraja is an httptest server standing in for the Daraja OAuth, STK push
// and STK query endpoints.
type FakeDaraja struct {
	Server *httptest.Server

	mu            sync.Mutex
	TokenCalls    int
	PushRequests  []map[string]any
	QueryRequests []map[string]any

	// FailPush makes the push endpoint answer 500 with an error document.
	FailPush bool
	// PushResponseCode is returned as ResponseCode; "0" means accepted.
	PushResponseCode string
	// QueryResultCode is returned as ResultCode by the query endpoint.
	QueryResultCode string
	QueryResultDesc string
	CheckoutID      string
}

// NewFakeDaraja starts the server; it is closed on test cleanup.
func NewFakeDaraja(t *testing.T) *FakeDaraja {
	t.Helper()
	f := &FakeDaraja{
		PushResponseCode: "0",
		QueryResultCode:  "0",
		QueryResultDesc:  "The service request is processed successfully.",
		CheckoutID:       "ws_CO_191220191020363925",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user == "" || pass == "" || r.URL.Query().Get("grant_type") != "client_credentials" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"errorCode": "400.008.01", "errorMessage": "Invalid Authentication passed"})
			return
		}
		f.mu.Lock()
		f.TokenCalls++
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "test-token", "expires_in": "3599"})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"errorCode": "404.001.03", "errorMessage": "Invalid Access Token"})
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		f.PushRequests = append(f.PushRequests, body)
		fail, code, checkout := f.FailPush, f.PushResponseCode, f.CheckoutID
		f.mu.Unlock()

		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"requestId": "1", "errorCode": "500.001.1001", "errorMessage": "Unable to lock subscriber"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"MerchantRequestID":   "29115-34620561-1",
			"CheckoutRequestID":   checkout,
			"ResponseCode":        code,
			"ResponseDescription": "Success. Request accepted for processing",
			"CustomerMessage":     "Success. Request accepted for processing",
		})
	})
	mux.HandleFunc("/mpesa/stkpushquery/v1/query", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		f.QueryRequests = append(f.QueryRequests, body)
		code, desc := f.QueryResultCode, f.QueryResultDesc
		f.mu.Unlock()

		checkout, _ := body["CheckoutRequestID"].(string)
		writeJSON(w, http.StatusOK, map[string]any{
			"ResponseCode":        "0",
			"ResponseDescription": "The service request has been accepted successsfully",
			"MerchantRequestID":   "29115-34620561-1",
			"CheckoutRequestID":   checkout,
			"ResultCode":          code,
			"ResultDesc":          desc,
		})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// Config returns Mpesa settings pointing at the fake.
func (f *FakeDaraja) Config() config.MpesaConfig {
	cfg := mpesaConfig()
	cfg.BaseURL = f.Server.URL
	return cfg
}

// LastPush returns the most recent STK push body.
func (f *FakeDaraja) LastPush() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.PushRequests) == 0 {
		return nil
	}
	return f.PushRequests[len(f.PushRequests)-1]
}

func (f *FakeDaraja) Tokens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.TokenCalls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
