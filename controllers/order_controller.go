package controllers

import (
	"strconv"

	"littlelemon/middlewares"
	"littlelemon/pkg/resp"
	"littlelemon/services"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

type OrderController struct{ Svc *services.OrderService }

func NewOrderController(s *services.OrderService) *OrderController { return &OrderController{Svc: s} }

// POST /api/orders
func (oc *OrderController) Create(c *gin.Context) {
	order, err := oc.Svc.PlaceOrder(c.Request.Context(), middlewares.CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Created(c, order)
}

// GET /api/orders?ordering=&status=&page=&limit=
func (oc *OrderController) List(c *gin.Context) {
	q := services.OrderQuery{
		Ordering: c.Query("ordering"),
		Page:     utils.QueryInt(c, "page", 1),
		Limit:    utils.QueryInt(c, "limit", 20),
	}
	if v, ok := c.GetQuery("status"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			resp.Invalid(c, "validation failed", map[string]string{"status": "must be an integer"})
			return
		}
		q.Status = &n
	}
	page, err := oc.Svc.ListOrders(c.Request.Context(), middlewares.CurrentPrincipal(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, page)
}

// GET /api/orders/:id
func (oc *OrderController) Get(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		resp.BadRequest(c, "invalid id")
		return
	}
	order, err := oc.Svc.GetOrder(c.Request.Context(), middlewares.CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, order)
}

// PUT /api/orders/:id
func (oc *OrderController) Replace(c *gin.Context) { oc.update(c, true) }

// PATCH /api/orders/:id
func (oc *OrderController) Patch(c *gin.Context) { oc.update(c, false) }

func (oc *OrderController) update(c *gin.Context, full bool) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		resp.BadRequest(c, "invalid id")
		return
	}
	var patch services.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	p := middlewares.CurrentPrincipal(c)
	update := oc.Svc.PatchOrder
	if full {
		update = oc.Svc.ReplaceOrder
	}
	order, err := update(c.Request.Context(), p, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, order)
}

// DELETE /api/orders/:id
func (oc *OrderController) Delete(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		resp.BadRequest(c, "invalid id")
		return
	}
	if err := oc.Svc.DeleteOrder(c.Request.Context(), middlewares.CurrentPrincipal(c), id); err != nil {
		respondError(c, err)
		return
	}
	resp.NoContent(c)
}
