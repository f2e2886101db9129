package controllers

import (
	"littlelemon/entity"
	"littlelemon/pkg/resp"
	"littlelemon/services"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

type MenuController struct{ Svc *services.MenuService }

func NewMenuController(s *services.MenuService) *MenuController { return &MenuController{Svc: s} }

// GET /api/menu-items?search=&category=&featured=&ordering=&page=&limit=
func (h *MenuController) List(c *gin.Context) {
	page, err := h.Svc.List(c.Request.Context(), services.MenuQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Featured: utils.QueryBool(c, "featured"),
		Ordering: c.Query("ordering"),
		Page:     utils.QueryInt(c, "page", 1),
		Limit:    utils.QueryInt(c, "limit", 20),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, page)
}

// GET /api/menu-items/:id
func (h *MenuController) Get(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		resp.BadRequest(c, "invalid id")
		return
	}
	item, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, item)
}

// POST /api/menu-items
func (h *MenuController) Create(c *gin.Context) {
	var in services.MenuItemIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	item, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Created(c, item)
}

// PUT /api/menu-items/:id
func (h *MenuController) Replace(c *gin.Context) { h.update(c, true) }

// PATCH /api/menu-items/:id
func (h *MenuController) Patch(c *gin.Context) { h.update(c, false) }

func (h *MenuController) update(c *gin.Context, full bool) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		resp.BadRequest(c, "invalid id")
		return
	}
	var in services.MenuItemIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	var (
		item *entity.MenuItem
		err  error
	)
	if full {
		item, err = h.Svc.Replace(c.Request.Context(), id, in)
	} else {
		item, err = h.Svc.Patch(c.Request.Context(), id, in)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, item)
}

// DELETE /api/menu-items/:id
func (h *MenuController) Delete(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		resp.BadRequest(c, "invalid id")
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	resp.NoContent(c)
}
