package routers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adconnect/models"
	courseModels "adconnect/models/course"
	"adconnect/utils/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	student models.Student
	pkg     models.Package
	course  courseModels.Course
}

func newPaymentFixture(t *testing.T, s *testServer) paymentFixture {
	t.Helper()
	pkg := testutil.CreatePackage(t, s.db, "Starter")
	return paymentFixture{
		student: testutil.CreateStudent(t, s.db, "Jane", "jane@example.com", "254712345678"),
		pkg:     pkg,
		course:  testutil.CreateCourse(t, s.db, "Digital Marketing", pkg.ID),
	}
}

func callbackBody(checkoutID string, resultCode int, desc string) string {
	if resultCode != 0 {
		return fmt.Sprintf(`{"Body":{"stkCallback":{"MerchantRequestID":"29115-34620561-1","CheckoutRequestID":%q,"ResultCode":%d,"ResultDesc":%q}}}`,
			checkoutID, resultCode, desc)
	}
	return fmt.Sprintf(`{"Body":{"stkCallback":{"MerchantRequestID":"29115-34620561-1","CheckoutRequestID":%q,"ResultCode":0,"ResultDesc":%q,
		"CallbackMetadata":{"Item":[{"Name":"Amount","Value":500.00},{"Name":"MpesaReceiptNumber","Value":"NLJ7RT61SV"},
		{"Name":"Balance"},{"Name":"TransactionDate","Value":20191219102115},{"Name":"PhoneNumber","Value":254712345678}]}}}}`,
		checkoutID, desc)
}

func (s *testServer) postCallback(t *testing.T, body string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/callback", bytes.NewBufferString(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ack map[string]interface{}
	require.NoError(t, decodeJSON(resp, &ack))
	assert.Equal(t, float64(0), ack["ResultCode"])
	assert.Equal(t, "Accepted", ack["ResultDesc"])
}

func TestSTKPush(t *testing.T) {
	s := newTestServer(t)
	fake := s.useDaraja(t)
	fx := newPaymentFixture(t, s)

	resp, env := s.requestAs(t, "", http.MethodPost, "/api/payments/stk-push", map[string]interface{}{
		"client": fx.student.ID, "course": fx.course.ID, "plan": "Basic",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	var data struct {
		Payment         models.Payment `json:"payment"`
		CustomerMessage string         `json:"CustomerMessage"`
	}
	env.decode(t, &data)
	assert.Equal(t, models.PaymentPending, data.Payment.Status)
	assert.Equal(t, float64(500), data.Payment.Amount)
	assert.Equal(t, fx.pkg.ID, data.Payment.PackageID)
	assert.Equal(t, models.PlanBasic, data.Payment.Plan)
	require.NotNil(t, data.Payment.CheckoutRequestID)
	assert.Equal(t, fake.CheckoutID, *data.Payment.CheckoutRequestID)
	assert.NotEmpty(t, data.CustomerMessage)

	push := fake.LastPush()
	require.NotNil(t, push)
	assert.Equal(t, float64(500), push["Amount"])
	assert.Equal(t, "254712345678", push["PhoneNumber"])
	assert.Equal(t, "254712345678", push["PartyA"])
	assert.Len(t, push["AccountReference"], 12)
	assert.Equal(t, "Digital Marke", push["TransactionDesc"])

	var stored models.Payment
	require.NoError(t, s.db.First(&stored, data.Payment.ID).Error)
	assert.NotContains(t, string(stored.GatewayRequest), "Password")
	assert.Contains(t, string(stored.GatewayRequest), "BusinessShortCode")
}

func TestSTKPush_Validation(t *testing.T) {
	s := newTestServer(t)
	s.useDaraja(t)
	fx := newPaymentFixture(t, s)
	other := testutil.CreatePackage(t, s.db, "Premium")
	landline := testutil.CreateStudent(t, s.db, "Office", "office@example.com", "020123456")

	tests := []struct {
		name     string
		body     map[string]interface{}
		wantCode int
		wantKey  string
	}{
		{"unknown plan", map[string]interface{}{"client": fx.student.ID, "course": fx.course.ID, "plan": "platinum"}, http.StatusUnprocessableEntity, "plan"},
		{"empty tier", map[string]interface{}{"client": fx.student.ID, "course": fx.course.ID, "plan": "silver"}, http.StatusUnprocessableEntity, "plan"},
		{"package mismatch", map[string]interface{}{"client": fx.student.ID, "course": fx.course.ID, "package": other.ID, "plan": "basic"}, http.StatusUnprocessableEntity, "package"},
		{"bad phone", map[string]interface{}{"client": fx.student.ID, "course": fx.course.ID, "plan": "basic", "phone": "12345"}, http.StatusUnprocessableEntity, "phone"},
		{"client phone not mpesa", map[string]interface{}{"client": landline.ID, "course": fx.course.ID, "plan": "basic"}, http.StatusUnprocessableEntity, "phone"},
		{"unknown client", map[string]interface{}{"client": 999, "course": fx.course.ID, "plan": "basic"}, http.StatusNotFound, ""},
		{"unknown course", map[string]interface{}{"client": fx.student.ID, "course": 999, "plan": "basic"}, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := s.requestAs(t, "", http.MethodPost, "/api/payments/stk-push", tt.body)
			assert.Equal(t, tt.wantCode, resp.StatusCode, env.Message)
			if tt.wantKey != "" {
				assert.Contains(t, string(env.Data), tt.wantKey)
			}
		})
	}

	var count int64
	s.db.Model(&models.Payment{}).Count(&count)
	assert.Zero(t, count)
}

func TestSTKPush_ExplicitPhone(t *testing.T) {
	s := newTestServer(t)
	fake := s.useDaraja(t)
	fx := newPaymentFixture(t, s)

	resp, env := s.requestAs(t, "", http.MethodPost, "/api/payments/stk-push", map[string]interface{}{
		"client": fx.student.ID, "course": fx.course.ID, "package": fx.pkg.ID, "plan": "gold", "phone": "+254 110 123 456",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	assert.Equal(t, "254110123456", fake.LastPush()["PhoneNumber"])
	assert.Equal(t, float64(5000), fake.LastPush()["Amount"])
}

func TestSTKPush_GatewayFailure(t *testing.T) {
	s := newTestServer(t)
	fake := s.useDaraja(t)
	fake.FailPush = true
	fx := newPaymentFixture(t, s)

	resp, env := s.requestAs(t, "", http.MethodPost, "/api/payments/stk-push", map[string]interface{}{
		"client": fx.student.ID, "course": fx.course.ID, "plan": "basic",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.False(t, env.Status)

	var payments []models.Payment
	require.NoError(t, s.db.Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentFailed, payments[0].Status)
	assert.Nil(t, payments[0].CheckoutRequestID)
	assert.NotEmpty(t, payments[0].ResultDesc)
}

func TestSTKPush_NoGateway(t *testing.T) {
	s := newTestServer(t)
	fx := newPaymentFixture(t, s)

	resp, _ := s.requestAs(t, "", http.MethodPost, "/api/payments/stk-push", map[string]interface{}{
		"client": fx.student.ID, "course": fx.course.ID, "plan": "basic",
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCallback_Success(t *testing.T) {
	s := newTestServer(t)
	fx := newPaymentFixture(t, s)
	payment := testutil.CreatePendingPayment(t, s.db, fx.student, fx.course, models.PlanBasic, 500, "ws_CO_ok")

	s.postCallback(t, callbackBody("ws_CO_ok", 0, "The service request is processed successfully."))

	var stored models.Payment
	require.NoError(t, s.db.First(&stored, payment.ID).Error)
	assert.Equal(t, models.PaymentCompleted, stored.Status)
	require.NotNil(t, stored.MpesaCode)
	assert.Equal(t, "NLJ7RT61SV", *stored.MpesaCode)
	assert.Equal(t, float64(500), stored.AmountPaid)
	require.NotNil(t, stored.Date)
	assert.Equal(t, 2019, stored.Date.Year())
	assert.Contains(t, string(stored.CallbackPayload), "NLJ7RT61SV")

	var subs []models.Subscription
	require.NoError(t, s.db.Where("user_id = ?", fx.student.ID).Find(&subs).Error)
	require.Len(t, subs, 1)
	assert.Equal(t, models.SubscriptionActive, subs[0].Status)
	assert.Equal(t, payment.ID, subs[0].PaymentID)

	// a repeated callback changes nothing
	s.postCallback(t, callbackBody("ws_CO_ok", 1032, "Request cancelled by user"))
	require.NoError(t, s.db.First(&stored, payment.ID).Error)
	assert.Equal(t, models.PaymentCompleted, stored.Status)
	var count int64
	s.db.Model(&models.Subscription{}).Count(&count)
	assert.Equal(t, int64(1), count)

	assert.Eventually(t, func() bool { return len(s.mail.Sent()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestCallback_FailureStatuses(t *testing.T) {
	s := newTestServer(t)
	fx := newPaymentFixture(t, s)
	cancelled := testutil.CreatePendingPayment(t, s.db, fx.student, fx.course, models.PlanBasic, 500, "ws_CO_cancel")
	failed := testutil.CreatePendingPayment(t, s.db, fx.student, fx.course, models.PlanBasic, 500, "ws_CO_fail")

	s.postCallback(t, callbackBody("ws_CO_cancel", 1032, "Request cancelled by user"))
	s.postCallback(t, callbackBody("ws_CO_fail", 1, "The balance is insufficient for the transaction"))

	var storedCancelled models.Payment
	require.NoError(t, s.db.First(&storedCancelled, cancelled.ID).Error)
	assert.Equal(t, models.PaymentCancelled, storedCancelled.Status)
	require.NotNil(t, storedCancelled.ResultCode)
	assert.Equal(t, 1032, *storedCancelled.ResultCode)

	var storedFailed models.Payment
	require.NoError(t, s.db.First(&storedFailed, failed.ID).Error)
	assert.Equal(t, models.PaymentFailed, storedFailed.Status)
	assert.Equal(t, "The balance is insufficient for the transaction", storedFailed.ResultDesc)

	var count int64
	s.db.Model(&models.Subscription{}).Count(&count)
	assert.Zero(t, count)
}

func TestCallback_UnknownOrMalformed(t *testing.T) {
	s := newTestServer(t)

	s.postCallback(t, callbackBody("ws_CO_nobody", 0, "ok"))
	s.postCallback(t, `{"Body":`)
	s.postCallback(t, `{}`)
}

func TestListGetAndQueryPayments(t *testing.T) {
	s := newTestServer(t)
	fake := s.useDaraja(t)
	fx := newPaymentFixture(t, s)
	pending := testutil.CreatePendingPayment(t, s.db, fx.student, fx.course, models.PlanBasic, 500, fake.CheckoutID)
	done := testutil.CreatePendingPayment(t, s.db, fx.student, fx.course, models.PlanBasic, 500, "ws_CO_done")
	require.NoError(t, s.db.Model(&done).Update("status", models.PaymentFailed).Error)

	var payments []models.Payment
	resp, env := s.request(t, http.MethodGet, "/api/payments?status=pending", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env.decode(t, &payments)
	require.Len(t, payments, 1)
	assert.Equal(t, pending.ID, payments[0].ID)

	_, env = s.request(t, http.MethodGet, "/api/payments?client="+itoa(fx.student.ID), nil)
	env.decode(t, &payments)
	assert.Len(t, payments, 2)

	resp, _ = s.request(t, http.MethodGet, "/api/payments?status=lost", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = s.request(t, http.MethodGet, "/api/payments/"+itoa(pending.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.request(t, http.MethodGet, "/api/payments/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.request(t, http.MethodPost, "/api/payments/"+itoa(done.ID)+"/query", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// a processing push leaves the payment untouched
	fake.QueryResultCode = ""
	resp, env = s.request(t, http.MethodPost, "/api/payments/"+itoa(pending.ID)+"/query", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Payment is still being processed.", env.Message)

	fake.QueryResultCode = "0"
	resp, env = s.request(t, http.MethodPost, "/api/payments/"+itoa(pending.ID)+"/query", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var updated models.Payment
	env.decode(t, &updated)
	assert.Equal(t, models.PaymentCompleted, updated.Status)
	assert.Equal(t, float64(500), updated.AmountPaid)

	var count int64
	s.db.Model(&models.Subscription{}).Where("payment_id = ?", pending.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
