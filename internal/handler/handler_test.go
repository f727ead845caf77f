package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inoutboard/internal/auditlog"
	"inoutboard/internal/presence"
	"inoutboard/internal/roster"
)

func setupRouter(t *testing.T) (*gin.Engine, *roster.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ms := roster.NewMemoryStore()
	eng := presence.NewEngine(ms, auditlog.Nop{}, zap.NewNop())
	rec := roster.NewReconciler(ms, auditlog.Nop{}, zap.NewNop())
	h := New(ms, eng, rec, nil, zap.NewNop())

	r := gin.New()
	r.GET("/api/status_update", h.StatusUpdate)
	r.GET("/api/status_view", h.StatusView)
	r.GET("/api/admin", h.Admin)
	return r, ms
}

func doGET(r *gin.Engine, path string, q url.Values) *httptest.ResponseRecorder {
	target := path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestStatusUpdateMissingData(t *testing.T) {
	r, _ := setupRouter(t)

	w := doGET(r, "/api/status_update", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "error", body["result"])
	assert.Equal(t, "missing_data", body["reason"])
}

func TestStatusUpdateOK(t *testing.T) {
	r, ms := setupRouter(t)
	id, _ := ms.Create(context.Background(), roster.Fields{Name: "amy"})

	w := doGET(r, "/api/status_update", url.Values{"data": {"1,1"}})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["result"])
	assert.Equal(t, float64(1), body["updated"])

	outcomes := body["outcomes"].([]any)
	require.Len(t, outcomes, 1)
	first := outcomes[0].(map[string]any)
	assert.Equal(t, "status_changed", first["kind"])
	assert.Equal(t, float64(1), first["new"])

	assert.Equal(t, roster.StatusAvailable, ms.Get(id).Status)
}

func TestStatusUpdateFormatError(t *testing.T) {
	r, ms := setupRouter(t)
	_, _ = ms.Create(context.Background(), roster.Fields{Name: "amy"})

	w := doGET(r, "/api/status_update", url.Values{"data": {"1,1,2"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "error", body["result"])
	assert.Equal(t, "format_error", body["reason"])
	assert.Equal(t, roster.StatusUnset, ms.Get(1).Status)
}

func TestStatusUpdatePartialFailureStillOK(t *testing.T) {
	r, ms := setupRouter(t)
	_, _ = ms.Create(context.Background(), roster.Fields{Name: "amy"})

	w := doGET(r, "/api/status_update", url.Values{"data": {"1,1,999,0"}})

	// Pair failures live in the breakdown, not the top-level result.
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["result"])

	outcomes := body["outcomes"].([]any)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "status_changed", outcomes[0].(map[string]any)["kind"])
	assert.Equal(t, "unknown_person", outcomes[1].(map[string]any)["kind"])
}

func TestStatusView(t *testing.T) {
	r, ms := setupRouter(t)
	_, _ = ms.Create(context.Background(), roster.Fields{Name: "amy", Department: "eng", Room: "101"})

	w := doGET(r, "/api/status_view", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "ok", body["result"])
	records := body["records"].([]any)
	require.Len(t, records, 1)
	rec := records[0].(map[string]any)
	assert.Equal(t, "amy", rec["name"])
	assert.Nil(t, rec["status"])
	assert.Nil(t, rec["timestamp"])

	// After an update the numeric status and timestamp appear.
	doGET(r, "/api/status_update", url.Values{"data": {"1,0"}})
	w = doGET(r, "/api/status_view", nil)
	rec = decode(t, w)["records"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(0), rec["status"])
	assert.NotNil(t, rec["timestamp"])
}

func TestAdminListAndAdd(t *testing.T) {
	r, _ := setupRouter(t)

	w := doGET(r, "/api/admin", url.Values{
		"action": {"add"}, "name": {"amy"}, "department": {"eng"},
		"grade": {""}, "role": {"dev"}, "room": {"101"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	added := decode(t, w)
	assert.Equal(t, "ok", added["result"])
	assert.Equal(t, float64(1), added["id"])

	w = doGET(r, "/api/admin", url.Values{"action": {"list"}})
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 1)
	entry := data[0].(map[string]any)
	assert.Equal(t, "amy", entry["name"])
	// The admin list has no status column.
	_, hasStatus := entry["status"]
	assert.False(t, hasStatus)
}

func TestAdminDelete(t *testing.T) {
	r, ms := setupRouter(t)
	id, _ := ms.Create(context.Background(), roster.Fields{Name: "amy"})

	w := doGET(r, "/api/admin", url.Values{"action": {"delete"}, "person_id": {"1"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["result"])
	assert.Nil(t, ms.Get(id))

	// Deleting again is a no-op success.
	w = doGET(r, "/api/admin", url.Values{"action": {"delete"}, "person_id": {"1"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["result"])
}

func TestAdminDeleteBadRequests(t *testing.T) {
	r, _ := setupRouter(t)

	w := doGET(r, "/api/admin", url.Values{"action": {"delete"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_person_id", decode(t, w)["reason"])

	w = doGET(r, "/api/admin", url.Values{"action": {"delete"}, "person_id": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_person_id", decode(t, w)["reason"])
}

func TestAdminBulkUpdate(t *testing.T) {
	r, ms := setupRouter(t)
	id, _ := ms.Create(context.Background(), roster.Fields{Name: "old"})

	records := `[{"id":"1","name":"new","department":"eng","grade":"","role":"dev","room":"202"},{"name":"fresh"}]`
	w := doGET(r, "/api/admin", url.Values{"action": {"bulk_update"}, "records": {records}})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["result"])
	detail := body["detail"].(map[string]any)
	assert.Equal(t, float64(1), detail["inserted"])
	assert.Equal(t, float64(1), detail["updated"])

	assert.Equal(t, "new", ms.Get(id).Name)
}

func TestAdminBulkUpdateBadJSON(t *testing.T) {
	r, _ := setupRouter(t)

	w := doGET(r, "/api/admin", url.Values{"action": {"bulk_update"}, "records": {"not json"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_records", decode(t, w)["reason"])

	w = doGET(r, "/api/admin", url.Values{"action": {"bulk_update"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_records", decode(t, w)["reason"])
}

func TestAdminExport(t *testing.T) {
	r, ms := setupRouter(t)
	_, _ = ms.Create(context.Background(), roster.Fields{Name: "amy"})

	w := doGET(r, "/api/admin", url.Values{"action": {"export"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "roster.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestAdminUnknownAction(t *testing.T) {
	r, _ := setupRouter(t)

	w := doGET(r, "/api/admin", url.Values{"action": {"reboot"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown_action", decode(t, w)["reason"])
}
