package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"metervoice/internal/domain"
	"metervoice/internal/notify"
	"metervoice/internal/repository"
	"metervoice/internal/schedule"
	"metervoice/internal/service"
	"metervoice/internal/store"
)

const testSecret = "test-gateway-secret"

type gatewayFixture struct {
	router *Router
	appts  *repository.MemoryAppointmentsRepo
	ops    *repository.MemoryOperatorsRepo
}

func newGatewayFixture(t *testing.T, secret string) *gatewayFixture {
	t.Helper()

	appts := repository.NewMemoryAppointmentsRepo()
	ops := repository.NewMemoryOperatorsRepo()
	callLog := repository.NewMemoryCallLogRepo()

	now := func() time.Time {
		return time.Date(2024, 7, 10, 10, 0, 0, 0, time.UTC)
	}

	svc := service.NewSchedulingService(
		appts,
		callLog,
		&schedule.Policy{Now: now},
		notify.NewPhoneResolver(ops),
		notify.NopNotifier{},
		zap.NewNop(),
	)

	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	sessions := store.NewCallSessionStore(kv, 15*time.Minute)

	logger := zap.NewNop()
	router := NewRouter(logger)
	auth := NewAuthMiddleware(secret, logger)
	router.RegisterVoiceRoutes(NewVoiceHandler(svc, sessions, logger), auth)
	router.RegisterAdminRoutes(NewExportHandler(appts, logger), auth)
	router.RegisterHealthRoute()

	return &gatewayFixture{router: router, appts: appts, ops: ops}
}

func (f *gatewayFixture) seedDefault() domain.Appointment {
	return f.appts.Seed(domain.Appointment{
		Matricola:    "TEST123456",
		CustomerName: "Mario Rossi",
		Address:      "Via Roma 123",
		Municipality: "Milano",
		Date:         mustDate("2024-07-20"),
		TimeSlot:     "08:00-12:00",
	})
}

func mustDate(iso string) time.Time {
	d, _ := time.Parse("2006-01-02", iso)
	return d
}

func platformToken(t *testing.T, secret string) string {
	t.Helper()
	claims := &PlatformClaims{
		Platform: "voice-platform",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "voice-platform",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, router *Router, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func TestSearchEndpointFound(t *testing.T) {
	f := newGatewayFixture(t, "")
	f.seedDefault()

	rec, body := doJSON(t, f.router, http.MethodPost, "/voice/api/v1/appointments/search",
		`{"matricola":"TEST123456"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["found"])
	appt := body["appointment"].(map[string]any)
	assert.Equal(t, "Via Roma 123", appt["indirizzo"])
	assert.Equal(t, "Milano", appt["comune"])
	assert.Equal(t, "2024-07-20", appt["data"])
}

func TestSearchEndpointNotFound(t *testing.T) {
	f := newGatewayFixture(t, "")

	rec, body := doJSON(t, f.router, http.MethodPost, "/voice/api/v1/appointments/search",
		`{"matricola":"UNKNOWN99"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["found"])
	assert.Contains(t, body["message"], "UNKNOWN99")
}

func TestSearchEndpointEmptyMatricola(t *testing.T) {
	f := newGatewayFixture(t, "")

	rec, _ := doJSON(t, f.router, http.MethodPost, "/voice/api/v1/appointments/search", `{}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmViaCallSession(t *testing.T) {
	f := newGatewayFixture(t, "")
	seeded := f.seedDefault()

	headers := map[string]string{"X-Call-Id": "CA777"}

	// Search within the call stores the matricola...
	rec, _ := doJSON(t, f.router, http.MethodPost, "/voice/api/v1/appointments/search",
		`{"matricola":"TEST123456"}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	// ...so confirm may omit both identifiers.
	rec, body := doJSON(t, f.router, http.MethodPost, "/voice/api/v1/appointments/confirm", `{}`, headers)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	stored, _ := f.appts.Get(seeded.ID)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
}

func TestRescheduleEndpointSuccess(t *testing.T) {
	f := newGatewayFixture(t, "")
	f.seedDefault()

	rec, body := doJSON(t, f.router, http.MethodPost, "/voice/api/v1/appointments/reschedule",
		`{"matricola":"TEST123456","new_date":"2024-08-01","new_time_slot":"09:00-12:00"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["message"], "giovedì 1 agosto 2024")
}

func TestRescheduleEndpointCapacity(t *testing.T) {
	f := newGatewayFixture(t, "")
	f.seedDefault()
	for i := 0; i < repository.SlotCapacity; i++ {
		f.appts.Seed(domain.Appointment{Matricola: "FULL", Date: mustDate("2024-08-01"), TimeSlot: "09:00-12:00"})
	}

	rec, body := doJSON(t, f.router, http.MethodPost, "/voice/api/v1/appointments/reschedule",
		`{"matricola":"TEST123456","new_date":"2024-08-01","new_time_slot":"09:00-12:00"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	alternatives := body["alternatives"].([]any)
	assert.Equal(t, []any{"08:00-12:00", "13:00-17:00"}, alternatives)
}

func TestRescheduleEndpointBadDate(t *testing.T) {
	f := newGatewayFixture(t, "")

	rec, _ := doJSON(t, f.router, http.MethodPost, "/voice/api/v1/appointments/reschedule",
		`{"matricola":"X","new_date":"01/08/2024","new_time_slot":"09:00-12:00"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentDateEndpoint(t *testing.T) {
	f := newGatewayFixture(t, "")

	rec, body := doJSON(t, f.router, http.MethodGet, "/voice/api/v1/dates/current", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	current := body["currentDate"].(map[string]any)
	assert.Equal(t, "2024-07-10", current["date"])
	assert.Len(t, body["availableDates"].([]any), 10)
	assert.Len(t, body["timeSlots"].([]any), 5)
}

func TestValidateDateEndpoint(t *testing.T) {
	f := newGatewayFixture(t, "")

	rec, body := doJSON(t, f.router, http.MethodPost, "/voice/api/v1/dates/validate",
		`{"proposed_date":"2024-07-14"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["isValid"])
	assert.Equal(t, "sunday", body["reason"])

	rec, body = doJSON(t, f.router, http.MethodPost, "/voice/api/v1/dates/validate",
		`{"proposed_date":"2024-08-01","time_slot":"09:00-12:00"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["isValid"])
	assert.Len(t, body["timeSlots"].([]any), 5)
}

func TestMutatingEndpointsRequireToken(t *testing.T) {
	f := newGatewayFixture(t, testSecret)
	f.seedDefault()

	rec, _ := doJSON(t, f.router, http.MethodPost, "/voice/api/v1/appointments/confirm",
		`{"matricola":"TEST123456"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, f.router, http.MethodPost, "/voice/api/v1/appointments/confirm",
		`{"matricola":"TEST123456"}`, map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := doJSON(t, f.router, http.MethodPost, "/voice/api/v1/appointments/confirm",
		`{"matricola":"TEST123456"}`,
		map[string]string{"Authorization": "Bearer " + platformToken(t, testSecret)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	// Search stays open: it is read-only.
	rec, _ = doJSON(t, f.router, http.MethodPost, "/voice/api/v1/appointments/search",
		`{"matricola":"TEST123456"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportEndpoint(t *testing.T) {
	f := newGatewayFixture(t, "")
	f.seedDefault()

	req := httptest.NewRequest(http.MethodGet, "/admin/api/v1/appointments/export?date=2024-07-20", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "appuntamenti_2024-07-20.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestExportEndpointBadDate(t *testing.T) {
	f := newGatewayFixture(t, "")

	req := httptest.NewRequest(http.MethodGet, "/admin/api/v1/appointments/export?date=nope", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	f := newGatewayFixture(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
