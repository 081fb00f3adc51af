package user

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/raline/core/internal/middleware"
	"github.com/raline/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/user", h.register)
	rg.POST("/token", h.login)
	rg.GET("/user", middleware.Auth(), h.profile)
}

func (h *Handler) register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResp(u))
}

func (h *Handler) login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, u, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, errBadLogin) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, TokenResp{UserResp: toResp(u), Token: token})
}

func (h *Handler) profile(c *gin.Context) {
	viewer := middleware.CurrentIdentity(c)
	u, err := h.svc.Get(c.Request.Context(), viewer.UID)
	if err != nil {
		if errors.Is(err, errUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResp(u))
}
