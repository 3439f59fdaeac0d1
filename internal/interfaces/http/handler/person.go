package handler

import (
	"github.com/gin-gonic/gin"
	invoiceapp "github.com/ledger/backend/internal/application/invoicing"
)

// PersonHandler handles person-related API endpoints
type PersonHandler struct {
	BaseHandler
	queries *invoiceapp.InvoiceQueryService
}

// NewPersonHandler creates a new PersonHandler
func NewPersonHandler(queries *invoiceapp.InvoiceQueryService) *PersonHandler {
	return &PersonHandler{queries: queries}
}

// Names godoc
// @ID           listPersonNames
// @Summary      List person names
// @Description  Returns the distinct counterparty names for filter dropdowns
// @Tags         persons
// @Produce      json
// @Success      200 {object} APIResponse[invoiceapp.PersonNamesResult]
// @Failure      500 {object} ErrorResponse
// @Router       /persons/names [get]
func (h *PersonHandler) Names(c *gin.Context) {
	result, err := h.queries.PersonNames(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
