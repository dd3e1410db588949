package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"crmtasks/internal/middleware"
)

// tolerant to int / int64 / float64 / string values
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getUserAndRole(c *gin.Context) (userID, roleID int) {
	if id, ok := getIntFromCtx(c, middleware.CtxUserID); ok {
		userID = id
	}
	if id, ok := getIntFromCtx(c, middleware.CtxRoleID); ok {
		roleID = id
	}
	return
}

// tenantFromCtx returns the caller's tenant, nil for unscoped callers.
func tenantFromCtx(c *gin.Context) *string {
	v, ok := c.Get(middleware.CtxTenantID)
	if !ok {
		return nil
	}
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	return &s
}

func visibleToCaller(tenant *string, taskTenant *string) bool {
	if tenant == nil {
		return true
	}
	return taskTenant != nil && *taskTenant == *tenant
}
