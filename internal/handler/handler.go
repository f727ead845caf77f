// Package handler wires the HTTP surface: the device-facing status_update
// endpoint, the viewer snapshot, and the admin console API. Routing stays
// thin; semantics live in internal/presence and internal/roster.
package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inoutboard/internal/presence"
	"inoutboard/internal/roster"
)

type Handler struct {
	store      roster.Store
	engine     *presence.Engine
	reconciler *roster.Reconciler
	cache      *presence.SnapshotCache // nil when Redis is not configured
	log        *zap.Logger
}

func New(store roster.Store, engine *presence.Engine, reconciler *roster.Reconciler, cache *presence.SnapshotCache, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, engine: engine, reconciler: reconciler, cache: cache, log: log}
}

// ---------- Status update (device-facing) ----------

// StatusUpdate handles GET /api/status_update?data=ID,STATUS,ID,STATUS,...
func (h *Handler) StatusUpdate(c *gin.Context) {
	raw, ok := c.GetQuery("data")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"result": "error", "reason": "missing_data"})
		return
	}

	res := h.engine.ApplyBatch(c.Request.Context(), raw)
	if res.FormatError {
		c.JSON(http.StatusBadRequest, gin.H{
			"result":   "error",
			"reason":   "format_error",
			"outcomes": res.Outcomes,
		})
		return
	}

	if res.Updated > 0 {
		h.cache.Invalidate(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{
		"result":   "ok",
		"updated":  res.Updated,
		"outcomes": res.Outcomes,
	})
}

// ---------- Viewer snapshot ----------

type viewRecord struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Department string  `json:"department"`
	Grade      string  `json:"grade"`
	Role       string  `json:"role"`
	Room       string  `json:"room"`
	Status     *int    `json:"status"`
	Timestamp  *string `json:"timestamp"`
}

// StatusView handles GET /api/status_view: the full current snapshot the
// viewer board polls. Served from the Redis cache when warm.
func (h *Handler) StatusView(c *gin.Context) {
	ctx := c.Request.Context()
	if body, ok := h.cache.Get(ctx); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}

	people, err := h.store.List(ctx)
	if err != nil {
		h.log.Error("status view query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"result": "error", "reason": "internal_error"})
		return
	}

	records := make([]viewRecord, 0, len(people))
	for _, p := range people {
		rec := viewRecord{
			ID:         p.ID,
			Name:       p.Name,
			Department: p.Department,
			Grade:      p.Grade,
			Role:       p.Role,
			Room:       p.Room,
			Status:     p.Status.Wire(),
		}
		if p.StatusAt != nil {
			ts := p.StatusAt.Format(time.RFC3339)
			rec.Timestamp = &ts
		}
		records = append(records, rec)
	}

	body, err := json.Marshal(gin.H{"result": "ok", "records": records})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"result": "error", "reason": "internal_error"})
		return
	}
	h.cache.Set(ctx, body)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// ---------- Admin console API ----------

type adminRecord struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Grade      string `json:"grade"`
	Role       string `json:"role"`
	Room       string `json:"room"`
}

// Admin dispatches GET /api/admin?action=list|add|delete|bulk_update|export.
func (h *Handler) Admin(c *gin.Context) {
	switch c.Query("action") {
	case "list":
		h.adminList(c)
	case "add":
		h.adminAdd(c)
	case "delete":
		h.adminDelete(c)
	case "bulk_update":
		h.adminBulkUpdate(c)
	case "export":
		h.adminExport(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"result": "error", "reason": "unknown_action"})
	}
}

func (h *Handler) adminList(c *gin.Context) {
	people, err := h.store.List(c.Request.Context())
	if err != nil {
		h.log.Error("admin list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"result": "error", "reason": "failed_to_fetch_people"})
		return
	}
	data := make([]adminRecord, 0, len(people))
	for _, p := range people {
		data = append(data, adminRecord{
			ID: p.ID, Name: p.Name, Department: p.Department,
			Grade: p.Grade, Role: p.Role, Room: p.Room,
		})
	}
	c.JSON(http.StatusOK, gin.H{"result": "ok", "data": data})
}

func (h *Handler) adminAdd(c *gin.Context) {
	f := roster.Fields{
		Name:       c.Query("name"),
		Department: c.Query("department"),
		Grade:      c.Query("grade"),
		Role:       c.Query("role"),
		Room:       c.Query("room"),
	}
	id, err := h.store.Create(c.Request.Context(), f)
	if err != nil {
		h.log.Error("admin add failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"result": "error", "reason": "insert_failed"})
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"result": "ok", "id": id})
}

func (h *Handler) adminDelete(c *gin.Context) {
	rawID, ok := c.GetQuery("person_id")
	if !ok || rawID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"result": "error", "reason": "missing_person_id"})
		return
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": "error", "reason": "invalid_person_id"})
		return
	}

	detail := h.reconciler.Reconcile(c.Request.Context(), nil, []int64{id})
	for _, out := range detail.Outcomes {
		if out.Kind == roster.RecordStorageError {
			c.JSON(http.StatusInternalServerError, gin.H{"result": "error", "reason": "delete_failed"})
			return
		}
	}
	// Deleting an ID that is already gone is success.
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"result": "ok"})
}

func (h *Handler) adminBulkUpdate(c *gin.Context) {
	rawRecords, ok := c.GetQuery("records")
	if !ok || rawRecords == "" {
		c.JSON(http.StatusBadRequest, gin.H{"result": "error", "reason": "missing_records"})
		return
	}
	var records []json.RawMessage
	if err := json.Unmarshal([]byte(rawRecords), &records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": "error", "reason": "invalid_records"})
		return
	}

	detail := h.reconciler.Reconcile(c.Request.Context(), records, nil)
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"result": "ok", "detail": detail})
}

func (h *Handler) adminExport(c *gin.Context) {
	people, err := h.store.List(c.Request.Context())
	if err != nil {
		h.log.Error("admin export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"result": "error", "reason": "failed_to_fetch_people"})
		return
	}
	var buf bytes.Buffer
	if err := roster.WriteXLSX(&buf, people); err != nil {
		h.log.Error("roster export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"result": "error", "reason": "export_failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="roster.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
