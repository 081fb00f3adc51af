package comment

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raline/core/internal/middleware"
	"github.com/raline/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes wires the waline-compatible comment endpoints. The read
// endpoint multiplexes on the type query param.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/comment")

	g.GET("", h.get)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

// GET /comment?type={list|count|recent|admin}
func (h *Handler) get(c *gin.Context) {
	switch c.Query("type") {
	case "count":
		h.count(c)
	case "recent":
		h.recent(c)
	case "admin":
		h.adminList(c)
	default:
		h.list(c)
	}
}

func (h *Handler) list(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		response.BadRequest(c, "path is required")
		return
	}

	q := ListQuery{
		Path:   path,
		Limit:  queryInt(c, "limit"),
		Offset: queryInt(c, "offset"),
		SortBy: ParseSortKey(c.Query("sortBy")),
	}
	if raw := c.Query("rid"); raw != "" {
		rid, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.BadRequest(c, "invalid rid")
			return
		}
		v := uint(rid)
		q.Rid = &v
	}
	resp, err := h.svc.List(c.Request.Context(), middleware.CurrentIdentity(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, resp)
}

func (h *Handler) count(c *gin.Context) {
	raw := c.Query("url")
	if raw == "" {
		raw = c.Query("path")
	}
	paths := strings.Split(raw, ",")

	counts, err := h.svc.Count(c.Request.Context(), middleware.CurrentIdentity(c), paths)
	if err != nil {
		respondError(c, err)
		return
	}
	// a single URL unwraps to a bare number, matching the waline client
	if len(counts) == 1 {
		response.OK(c, counts[0])
		return
	}
	response.OK(c, counts)
}

func (h *Handler) recent(c *gin.Context) {
	data, err := h.svc.Recent(c.Request.Context(), middleware.CurrentIdentity(c), queryInt(c, "count"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, data)
}

func (h *Handler) adminList(c *gin.Context) {
	q := AdminQuery{
		Page:    queryInt(c, "page"),
		Size:    queryInt(c, "size"),
		Status:  c.DefaultQuery("status", "approved"),
		Owner:   c.Query("owner"),
		Keyword: c.Query("keyword"),
	}
	resp, err := h.svc.AdminList(c.Request.Context(), middleware.CurrentIdentity(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, resp)
}

func (h *Handler) create(c *gin.Context) {
	var req AddCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.svc.Add(c.Request.Context(), middleware.CurrentIdentity(c), c.ClientIP(), c.GetHeader("User-Agent"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, resp)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req UpdateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), middleware.CurrentIdentity(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, resp)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, true)
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

func respondError(c *gin.Context, err error) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		response.Reject(c, rej.Status, rej.Reason)
		return
	}
	response.InternalError(c, err)
}
