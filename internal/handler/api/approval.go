package api

import (
	"errors"
	"net/http"

	"stewardflow/internal/domain/approval"
	"stewardflow/internal/handler/dto/response"
	"stewardflow/internal/handler/httperr"
	"stewardflow/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApprovalHandler struct {
	approvals usecase.ApprovalUseCase
}

func NewApprovalHandler(approvals usecase.ApprovalUseCase) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals}
}

// Resolve answers which role is required to approve a booking for the
// given scope and optional department.
func (h *ApprovalHandler) Resolve(c *gin.Context) {
	orgID, err := uuid.Parse(c.Query("organization_id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid organization_id", nil)
		return
	}

	scope := approval.Scope(c.Query("scope"))

	var department *string
	if dept := c.Query("department"); dept != "" {
		department = &dept
	}

	role, err := h.approvals.ResolveApprovalRole(c.Request.Context(), orgID, scope, department)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrValidation):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Validation failed", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, response.ApprovalRoleResponse{RequiredRole: role.String()})
}
