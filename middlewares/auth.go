package middlewares

import (
	"context"
	"errors"
	"strings"

	"littlelemon/pkg/logging"
	"littlelemon/pkg/resp"
	"littlelemon/services"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// PrincipalResolver turns a bearer token into the request principal.
type PrincipalResolver interface {
	Principal(ctx context.Context, token string) (services.Principal, error)
}

// Authenticate resolves the caller once per request. A missing header leaves the
// request anonymous; a present but bad token is rejected with 401 after the
// onReject handlers ran as an anonymous caller (e.g. RateLimit, so failed
// attempts use up the anonymous quota). An onReject handler may abort instead.
func Authenticate(auth PrincipalResolver, onReject ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			setPrincipal(c, services.Anonymous)
			c.Next()
			return
		}
		if !strings.HasPrefix(h, "Bearer ") {
			reject(c, onReject, "missing or invalid token")
			return
		}

		p, err := auth.Principal(c.Request.Context(), strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				logging.From(c).Error("resolve principal", "error", err)
			}
			reject(c, onReject, "invalid token")
			return
		}
		setPrincipal(c, p)
		logging.With(c, logging.From(c).With("user_id", p.UserID, "role", string(p.Role)))
		c.Next()
	}
}

func reject(c *gin.Context, onReject []gin.HandlerFunc, msg string) {
	setPrincipal(c, services.Anonymous)
	for _, h := range onReject {
		h(c)
		if c.IsAborted() {
			return
		}
	}
	resp.AbortUnauthorized(c, msg)
}

func setPrincipal(c *gin.Context, p services.Principal) {
	c.Set(principalKey, p)
	if p.Authenticated() {
		c.Set("userId", p.UserID)
		c.Set("username", p.Username)
		c.Set("role", p.Role)
	}
}

// CurrentPrincipal returns the principal set by Authenticate, or Anonymous.
func CurrentPrincipal(c *gin.Context) services.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(services.Principal); ok {
			return p
		}
	}
	return services.Anonymous
}

// Gate applies services.Authorize to the route's resource, deriving the
// action from the HTTP method.
func Gate(resource services.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		action := services.ActionFromMethod(c.Request.Method)
		switch services.Authorize(CurrentPrincipal(c), action, resource) {
		case services.DenyUnauthenticated:
			c.Header("WWW-Authenticate", `Bearer realm="littlelemon"`)
			resp.AbortUnauthorized(c, "authentication required")
			return
		case services.DenyForbidden:
			resp.AbortForbidden(c, "you do not have permission to perform this action")
			return
		}
		c.Next()
	}
}
