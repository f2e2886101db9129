package controllers

import (
	"littlelemon/pkg/resp"
	"littlelemon/services"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

// CartController sits behind Gate(ResourceCart), so the caller is always a customer.
type CartController struct{ Svc *services.CartService }

func NewCartController(s *services.CartService) *CartController { return &CartController{Svc: s} }

// GET /api/cart/menu-items
func (h *CartController) List(c *gin.Context) {
	view, err := h.Svc.List(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, view)
}

// POST /api/cart/menu-items
func (h *CartController) Add(c *gin.Context) {
	var in services.AddToCartIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	entry, err := h.Svc.Add(c.Request.Context(), utils.CurrentUserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Created(c, entry)
}

// DELETE /api/cart/menu-items/:id
func (h *CartController) Remove(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		resp.BadRequest(c, "invalid id")
		return
	}
	if err := h.Svc.Remove(c.Request.Context(), utils.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	resp.NoContent(c)
}

// DELETE /api/cart/menu-items
func (h *CartController) Clear(c *gin.Context) {
	n, err := h.Svc.Clear(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"deleted": n})
}
