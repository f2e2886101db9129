package controllers

import (
	"errors"

	"littlelemon/middlewares"
	"littlelemon/pkg/resp"
	"littlelemon/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct{ Svc *services.AuthService }

func NewAuthController(s *services.AuthService) *AuthController { return &AuthController{Svc: s} }

// POST /auth/register
func (a *AuthController) Register(c *gin.Context) {
	var req services.RegisterIn
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	user, err := a.Svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Created(c, services.ToUserOut(user))
}

// POST /auth/login
func (a *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	token, user, err := a.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		resp.Unauthorized(c, "invalid username or password")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"token": token, "user": services.ToUserOut(user)})
}

// GET /auth/me
func (a *AuthController) Me(c *gin.Context) {
	p := middlewares.CurrentPrincipal(c)
	if !p.Authenticated() {
		resp.Unauthorized(c, "authentication required")
		return
	}
	profile, err := a.Svc.Profile(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, profile)
}
