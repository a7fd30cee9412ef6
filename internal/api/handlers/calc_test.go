package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/onetool/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcHandler_SIP(t *testing.T) {
	handler := NewCalcHandler(service.NewCalculatorService())

	w := httptest.NewRecorder()
	handler.SIP(w, httptest.NewRequest(http.MethodPost, "/calc/sip", strings.NewReader(`{"monthly":1000,"annual_rate":0,"years":1}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w.Body.Bytes())
	assert.Equal(t, float64(12000), data["invested"])
	assert.Equal(t, float64(12000), data["future_value"])
	assert.Equal(t, float64(0), data["gains"])
}

func TestCalcHandler_EMI_Schedule(t *testing.T) {
	handler := NewCalcHandler(service.NewCalculatorService())
	body := `{"principal":1200,"annual_rate":0,"months":12}`

	w := httptest.NewRecorder()
	handler.EMI(w, httptest.NewRequest(http.MethodPost, "/calc/emi", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w.Body.Bytes())
	assert.Equal(t, float64(100), data["payment"])
	_, hasSchedule := data["schedule"]
	assert.False(t, hasSchedule)

	w = httptest.NewRecorder()
	handler.EMI(w, httptest.NewRequest(http.MethodPost, "/calc/emi?schedule=true", strings.NewReader(body)))
	data = decodeData(t, w.Body.Bytes())
	schedule, ok := data["schedule"].([]interface{})
	require.True(t, ok)
	assert.Len(t, schedule, 12)
}

func TestCalcHandler_BMI(t *testing.T) {
	handler := NewCalcHandler(service.NewCalculatorService())

	w := httptest.NewRecorder()
	handler.BMI(w, httptest.NewRequest(http.MethodPost, "/calc/bmi", strings.NewReader(`{"weight_kg":70,"height_cm":175}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w.Body.Bytes())
	assert.Equal(t, 22.9, data["value"])
	assert.Equal(t, "normal", data["category"])
}

func TestCalcHandler_Errors(t *testing.T) {
	handler := NewCalcHandler(service.NewCalculatorService())

	w := httptest.NewRecorder()
	handler.BMI(w, httptest.NewRequest(http.MethodPost, "/calc/bmi", strings.NewReader(`{"weight_kg":-1,"height_cm":175}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid calculator input")

	w = httptest.NewRecorder()
	handler.SIP(w, httptest.NewRequest(http.MethodPost, "/calc/sip", strings.NewReader(`{bad`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	NewHealthHandler(fakePinger{}).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeData(t, w.Body.Bytes())["status"])

	w = httptest.NewRecorder()
	NewHealthHandler(fakePinger{err: errors.New("down")}).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", decodeData(t, w.Body.Bytes())["status"])

	w = httptest.NewRecorder()
	NewHealthHandler(nil).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

type fakeJob struct {
	name string
	at   time.Time
	err  error
}

func (j fakeJob) Name() string                { return j.name }
func (j fakeJob) LastRun() (time.Time, error) { return j.at, j.err }

func TestHealthHandler_ReportsJobs(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := NewHealthHandler(fakePinger{},
		fakeJob{name: "snapshot", at: at},
		fakeJob{name: "search-log-pruner", at: at, err: errors.New("db down")},
		fakeJob{name: "idle"},
	)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w.Body.Bytes())
	jobs := data["jobs"].(map[string]interface{})
	assert.Equal(t, "2026-03-01T12:00:00Z", jobs["snapshot"].(map[string]interface{})["last_run"])
	assert.Equal(t, "db down", jobs["search-log-pruner"].(map[string]interface{})["error"])
	assert.Empty(t, jobs["idle"])
}
