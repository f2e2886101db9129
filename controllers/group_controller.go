package controllers

import (
	"littlelemon/pkg/resp"
	"littlelemon/services"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
)

// GroupController serves /api/groups/:group/users for one fixed group.
type GroupController struct {
	Svc   *services.GroupService
	Group string
}

func NewGroupController(s *services.GroupService, group string) *GroupController {
	return &GroupController{Svc: s, Group: group}
}

// GET /api/groups/<group>/users
func (h *GroupController) List(c *gin.Context) {
	users, err := h.Svc.ListMembers(c.Request.Context(), h.Group)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, services.ToUserOuts(users))
}

// POST /api/groups/<group>/users {"user_id": 3}
func (h *GroupController) Add(c *gin.Context) {
	var in services.MemberIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Invalid(c, "validation failed", map[string]string{"user_id": "required"})
		return
	}
	user, err := h.Svc.AddMember(c.Request.Context(), h.Group, in.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Created(c, services.ToUserOut(user))
}

// DELETE /api/groups/<group>/users/:userId
func (h *GroupController) Remove(c *gin.Context) {
	id, ok := utils.ParamID(c, "userId")
	if !ok {
		resp.BadRequest(c, "invalid user id")
		return
	}
	if err := h.Svc.RemoveMember(c.Request.Context(), h.Group, id); err != nil {
		respondError(c, err)
		return
	}
	resp.OK(c, gin.H{"removed": id})
}
