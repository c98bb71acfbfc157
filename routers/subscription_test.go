package routers

import (
	"net/http"
	"testing"
	"time"

	"adconnect/models"
	"adconnect/utils/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptions(t *testing.T) {
	s := newTestServer(t)
	fx := newPaymentFixture(t, s)
	other := testutil.CreateStudent(t, s.db, "John", "john@example.com", "254722345678")

	now := time.Now()
	active := models.Subscription{UserID: fx.student.ID, PackageID: fx.pkg.ID, PaymentID: 1, PackagePlan: models.PlanBasic,
		StartDate: now, EndDate: now.AddDate(0, 1, 0), Status: models.SubscriptionActive}
	expired := models.Subscription{UserID: other.ID, PackageID: fx.pkg.ID, PaymentID: 2, PackagePlan: models.PlanGold,
		StartDate: now.AddDate(-1, 0, 0), EndDate: now.AddDate(0, 0, -1), Status: models.SubscriptionExpired}
	require.NoError(t, s.db.Create(&active).Error)
	require.NoError(t, s.db.Create(&expired).Error)

	var subs []models.Subscription
	resp, env := s.request(t, http.MethodGet, "/api/subscriptions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env.decode(t, &subs)
	assert.Len(t, subs, 2)

	_, env = s.request(t, http.MethodGet, "/api/subscriptions?status=active", nil)
	env.decode(t, &subs)
	require.Len(t, subs, 1)
	assert.Equal(t, active.ID, subs[0].ID)
	assert.Equal(t, "Starter", subs[0].Package.PackageName)

	_, env = s.request(t, http.MethodGet, "/api/subscriptions?client="+itoa(other.ID), nil)
	env.decode(t, &subs)
	require.Len(t, subs, 1)
	assert.Equal(t, expired.ID, subs[0].ID)

	resp, _ = s.request(t, http.MethodGet, "/api/subscriptions?status=paused", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = s.request(t, http.MethodGet, "/api/subscriptions/"+itoa(active.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.request(t, http.MethodGet, "/api/subscriptions/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = s.request(t, http.MethodPut, "/api/subscriptions/"+itoa(active.ID)+"/cancel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var cancelled models.Subscription
	require.NoError(t, s.db.First(&cancelled, active.ID).Error)
	assert.Equal(t, models.SubscriptionCancelled, cancelled.Status)

	resp, _ = s.request(t, http.MethodPut, "/api/subscriptions/"+itoa(active.ID)+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = s.request(t, http.MethodPut, "/api/subscriptions/"+itoa(expired.ID)+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
