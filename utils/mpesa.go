package utils

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"adconnect/config"

	"github.com/go-resty/resty/v2"
)

var ErrGateway = errors.New("payment gateway error")

// Daraja result codes with special meaning
const (
	MpesaResultSuccess   = 0
	MpesaResultCancelled = 1032
)

const (
	mpesaTokenPath = "/oauth/v1/generate"
	mpesaSTKPath   = "/mpesa/stkpush/v1/processrequest"
	mpesaQueryPath = "/mpesa/stkpushquery/v1/query"
)

// Kenya has no daylight saving, so a fixed zone avoids a tzdata dependency.
var eat = time.FixedZone("EAT", 3*60*60)

// Mpesa is the gateway client used by the payment controllers.
var Mpesa *MpesaClient

// InitMpesa builds the global client from configuration.
func InitMpesa(cfg config.MpesaConfig) {
	Mpesa = NewMpesaClient(cfg)
}

// MpesaClient talks to the Safaricom Daraja API.
type MpesaClient struct {
	cfg    config.MpesaConfig
	client *resty.Client
	now    func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewMpesaClient(cfg config.MpesaConfig) *MpesaClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cfg.TransactionType == "" {
		cfg.TransactionType = "CustomerPayBillOnline"
	}
	return &MpesaClient{
		cfg: cfg,
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		now: time.Now,
	}
}

type mpesaTokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
}

type mpesaErrorResponse struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// STKPushRequest is what the caller supplies for one push.
type STKPushRequest struct {
	Amount           int
	Phone            string
	AccountReference string
	TransactionDesc  string
}

// STKPushResponse is Daraja's synchronous acknowledgement of a push.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKQueryResponse reports the state of an earlier push.
type STKQueryResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
}

// ResultCodeInt parses ResultCode; ok is false while the push is still being
// processed.
func (r STKQueryResponse) ResultCodeInt() (int, bool) {
	code, err := strconv.Atoi(r.ResultCode)
	if err != nil {
		return 0, false
	}
	return code, true
}

// AccessToken returns a cached OAuth token, fetching a new one a minute
// before the old one expires.
func (m *MpesaClient) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.now().Before(m.tokenExpiry) {
		return m.token, nil
	}

	var tokenResp mpesaTokenResponse
	var errResp mpesaErrorResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetBasicAuth(m.cfg.ConsumerKey, m.cfg.ConsumerSecret).
		SetQueryParam("grant_type", "client_credentials").
		SetResult(&tokenResp).
		SetError(&errResp).
		Get(mpesaTokenPath)
	if err != nil {
		return "", fmt.Errorf("%w: token request: %v", ErrGateway, err)
	}
	if resp.IsError() || tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: token request returned %d %s", ErrGateway, resp.StatusCode(), errResp.ErrorMessage)
	}

	ttl := 3599 * time.Second
	if secs, err := tokenResp.ExpiresIn.Int64(); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}
	m.token = tokenResp.AccessToken
	m.tokenExpiry = m.now().Add(ttl - time.Minute)

	return m.token, nil
}

// Password derives the request password and timestamp Daraja signs pushes
// with.
func (m *MpesaClient) Password() (password, timestamp string) {
	timestamp = m.now().In(eat).Format("20060102150405")
	password = base64.StdEncoding.EncodeToString([]byte(m.cfg.ShortCode + m.cfg.PassKey + timestamp))
	return password, timestamp
}

// STKPush asks Daraja to prompt the customer's phone for payment.
func (m *MpesaClient) STKPush(ctx context.Context, req STKPushRequest) (*STKPushResponse, map[string]any, error) {
	token, err := m.AccessToken(ctx)
	if err != nil {
		return nil, nil, err
	}

	password, timestamp := m.Password()
	body := map[string]any{
		"BusinessShortCode": m.cfg.ShortCode,
		"Password":          password,
		"Timestamp":         timestamp,
		"TransactionType":   m.cfg.TransactionType,
		"Amount":            req.Amount,
		"PartyA":            req.Phone,
		"PartyB":            m.cfg.ShortCode,
		"PhoneNumber":       req.Phone,
		"CallBackURL":       m.cfg.CallbackURL,
		"AccountReference":  truncate(req.AccountReference, 12),
		"TransactionDesc":   truncate(req.TransactionDesc, 13),
	}

	var result STKPushResponse
	var errResp mpesaErrorResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body).
		SetResult(&result).
		SetError(&errResp).
		Post(mpesaSTKPath)

	// the password is a credential; keep it out of the stored request
	logged := make(map[string]any, len(body))
	for k, v := range body {
		if k != "Password" {
			logged[k] = v
		}
	}

	if err != nil {
		return nil, logged, fmt.Errorf("%w: stk push: %v", ErrGateway, err)
	}
	if resp.IsError() {
		return nil, logged, fmt.Errorf("%w: stk push returned %d %s %s", ErrGateway, resp.StatusCode(), errResp.ErrorCode, errResp.ErrorMessage)
	}
	if result.ResponseCode != "0" {
		return &result, logged, fmt.Errorf("%w: stk push rejected: %s", ErrGateway, result.ResponseDescription)
	}
	return &result, logged, nil
}

// STKQuery asks Daraja for the outcome of an earlier push.
func (m *MpesaClient) STKQuery(ctx context.Context, checkoutRequestID string) (*STKQueryResponse, error) {
	token, err := m.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	password, timestamp := m.Password()
	var result STKQueryResponse
	var errResp mpesaErrorResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]any{
			"BusinessShortCode": m.cfg.ShortCode,
			"Password":          password,
			"Timestamp":         timestamp,
			"CheckoutRequestID": checkoutRequestID,
		}).
		SetResult(&result).
		SetError(&errResp).
		Post(mpesaQueryPath)
	if err != nil {
		return nil, fmt.Errorf("%w: stk query: %v", ErrGateway, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: stk query returned %d %s %s", ErrGateway, resp.StatusCode(), errResp.ErrorCode, errResp.ErrorMessage)
	}
	return &result, nil
}

// STKCallback is the document Daraja posts to the callback URL.
type STKCallback struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string `json:"Name"`
					Value any    `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

func (c STKCallback) item(name string) (any, bool) {
	for _, it := range c.Body.StkCallback.CallbackMetadata.Item {
		if it.Name == name {
			return it.Value, it.Value != nil
		}
	}
	return nil, false
}

func (c STKCallback) itemString(name string) string {
	v, ok := c.item(name)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// Amount is the amount the customer actually paid.
func (c STKCallback) Amount() float64 {
	v, _ := strconv.ParseFloat(c.itemString("Amount"), 64)
	return v
}

// Receipt is the M-Pesa transaction code.
func (c STKCallback) Receipt() string {
	return c.itemString("MpesaReceiptNumber")
}

// Phone is the paying MSISDN.
func (c STKCallback) Phone() string {
	return c.itemString("PhoneNumber")
}

// TransactionDate parses the yyyyMMddHHmmss value Daraja sends, in EAT. It
// falls back to fallback when absent or malformed.
func (c STKCallback) TransactionDate(fallback time.Time) time.Time {
	raw := c.itemString("TransactionDate")
	t, err := time.ParseInLocation("20060102150405", raw, eat)
	if err != nil {
		return fallback
	}
	return t
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
