package services

import (
	"net/http"

	"littlelemon/entity"
)

// Principal is the caller of one request. Role is resolved once by the auth middleware.
type Principal struct {
	UserID   uint
	Username string
	Role     entity.Role
}

// Anonymous is the zero principal.
var Anonymous = Principal{}

func (p Principal) Authenticated() bool { return p.UserID != 0 }
func (p Principal) IsManager() bool     { return p.Authenticated() && p.Role == entity.RoleManager }
func (p Principal) IsDeliveryCrew() bool {
	return p.Authenticated() && p.Role == entity.RoleDeliveryCrew
}
func (p Principal) IsCustomer() bool { return p.Authenticated() && p.Role == entity.RoleCustomer }

type Action string

const (
	ActionRead          Action = "read"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDelete        Action = "delete"
)

// ActionFromMethod maps an HTTP verb to an Action.
func ActionFromMethod(method string) Action {
	switch method {
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut:
		return ActionUpdate
	case http.MethodPatch:
		return ActionPartialUpdate
	case http.MethodDelete:
		return ActionDelete
	}
	return ActionRead
}

type Resource string

const (
	ResourceMenu     Resource = "menu"
	ResourceCategory Resource = "category"
	ResourceCart     Resource = "cart"
	ResourceOrder    Resource = "order"
	ResourceGroup    Resource = "group"
)

type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

// Err returns nil for Allow and the matching sentinel otherwise.
func (d Decision) Err() error {
	switch d {
	case DenyUnauthenticated:
		return ErrUnauthenticated
	case DenyForbidden:
		return ErrForbidden
	}
	return nil
}

// Authorize decides whether p may perform action on resource.
// It has no side effects; row-level filtering is done with OrderScopeFor.
func Authorize(p Principal, action Action, resource Resource) Decision {
	switch resource {
	case ResourceMenu, ResourceCategory:
		if action == ActionRead {
			return Allow
		}
		return managerOnly(p)

	case ResourceCart:
		if !p.Authenticated() {
			return DenyUnauthenticated
		}
		if p.IsCustomer() {
			return Allow
		}
		return DenyForbidden

	case ResourceOrder:
		if !p.Authenticated() {
			return DenyUnauthenticated
		}
		switch action {
		case ActionRead, ActionCreate:
			return Allow
		case ActionPartialUpdate:
			if p.IsManager() || p.IsDeliveryCrew() {
				return Allow
			}
			return DenyForbidden
		default: // full update, delete
			return managerOnly(p)
		}

	case ResourceGroup:
		return managerOnly(p)
	}
	return DenyForbidden
}

func managerOnly(p Principal) Decision {
	if !p.Authenticated() {
		return DenyUnauthenticated
	}
	if p.IsManager() {
		return Allow
	}
	return DenyForbidden
}

// OrderScope restricts which orders a principal can see. Nil fields mean no restriction.
type OrderScope struct {
	UserID         *uint
	DeliveryCrewID *uint
}

// OrderScopeFor returns the row filter for p: Managers see everything,
// delivery crew their assigned orders, customers their own.
func OrderScopeFor(p Principal) OrderScope {
	id := p.UserID
	switch {
	case p.IsManager():
		return OrderScope{}
	case p.IsDeliveryCrew():
		return OrderScope{DeliveryCrewID: &id}
	default:
		return OrderScope{UserID: &id}
	}
}
