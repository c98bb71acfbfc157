package routers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"adconnect/middleware"
	"adconnect/models"
	"adconnect/utils"
	"adconnect/utils/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v), string(e.Data))
}

type testServer struct {
	app   *fiber.App
	db    *gorm.DB
	token string
	mail  *utils.ConsoleEmailService
}

// newTestServer builds the full API on a fresh database with a logged-in
// ADMIN. The payment gateway is unset unless a test installs one.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.Setup(t)

	prevEmail, prevMpesa := utils.Email, utils.Mpesa
	mail := utils.NewConsoleEmailService()
	utils.Email = mail
	utils.Mpesa = nil
	t.Cleanup(func() { utils.Email, utils.Mpesa = prevEmail, prevMpesa })

	app := fiber.New(fiber.Config{
		BodyLimit:    20 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler,
	})
	Setup(app)
	app.Use(middleware.NotFound)

	admin := testutil.CreateUser(t, db, "admin@adconnect.co.ke", "password123", models.RoleAdmin)
	token, err := middleware.GenerateJWT(admin.ID, admin.Name, admin.Role, admin.Email)
	require.NoError(t, err)

	return &testServer{app: app, db: db, token: token, mail: mail}
}

// useDaraja points the payment gateway at a fake Daraja server.
func (s *testServer) useDaraja(t *testing.T) *testutil.FakeDaraja {
	t.Helper()
	fake := testutil.NewFakeDaraja(t)
	utils.Mpesa = utils.NewMpesaClient(fake.Config())
	return fake
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) (*http.Response, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var env envelope
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, env
}

// request sends body as JSON with the admin token.
func (s *testServer) request(t *testing.T, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	return s.requestAs(t, s.token, method, path, body)
}

func (s *testServer) requestAs(t *testing.T, token, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return s.do(t, req, token)
}

type formFile struct {
	field, name string
	content     []byte
}

// multipartRequest sends fields and files as multipart/form-data with the
// admin token.
func (s *testServer) multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...formFile) (*http.Response, envelope) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return s.do(t, req, s.token)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func decodeJSON(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}
