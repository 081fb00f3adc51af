package view

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raline/core/internal/models"
	"github.com/raline/core/internal/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service tracks article page views.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Counts returns the view counter for each path, positionally aligned,
// 0 for paths never seen.
func (s *Service) Counts(ctx context.Context, paths []string) ([]int, error) {
	var rows []models.PageViewModel
	if err := s.db.WithContext(ctx).Where("path IN ?", paths).Find(&rows).Error; err != nil {
		return nil, err
	}
	byPath := make(map[string]int, len(rows))
	for _, row := range rows {
		byPath[row.Path] = row.Times
	}
	out := make([]int, len(paths))
	for i, p := range paths {
		out[i] = byPath[p]
	}
	return out, nil
}

// Increment bumps the counter for one path, creating it on first view, and
// returns the new value.
func (s *Service) Increment(ctx context.Context, path string) (int, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"times": gorm.Expr("times + 1")}),
	}).Create(&models.PageViewModel{Path: path, Times: 1}).Error
	if err != nil {
		return 0, err
	}

	var row models.PageViewModel
	if err := s.db.WithContext(ctx).First(&row, "path = ?", path).Error; err != nil {
		return 0, err
	}
	return row.Times, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/article", h.get)
	rg.POST("/article", h.increment)
}

// GET /article?path=a,b
func (h *Handler) get(c *gin.Context) {
	raw := c.Query("path")
	if raw == "" {
		response.BadRequest(c, "path is required")
		return
	}
	counts, err := h.svc.Counts(c.Request.Context(), strings.Split(raw, ","))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, counts)
}

// POST /article {path}
func (h *Handler) increment(c *gin.Context) {
	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	n, err := h.svc.Increment(c.Request.Context(), req.Path)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, []int{n})
}
