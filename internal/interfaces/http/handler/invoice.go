package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoiceapp "github.com/ledger/backend/internal/application/invoicing"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/interfaces/http/dto"
	"github.com/ledger/backend/internal/interfaces/http/middleware"
)

// invoiceDateLayout is the wire format for invoice dates in requests.
const invoiceDateLayout = "2006-01-02"

// InvoiceHandler handles invoice-related API endpoints
type InvoiceHandler struct {
	BaseHandler
	queries *invoiceapp.InvoiceQueryService
	writes  *invoiceapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(queries *invoiceapp.InvoiceQueryService, writes *invoiceapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		queries: queries,
		writes:  writes,
	}
}

// PersonDataRequest identifies the invoice counterparty by (name, role)
// @Description Counterparty data for invoice writes
type PersonDataRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200" example:"Acme Cement Co"`
	Role string `json:"role" binding:"required,personrole" example:"vendor"`
}

// InvoiceItemRequest represents a line item in an invoice write
// @Description Invoice line item
type InvoiceItemRequest struct {
	ItemName     string  `json:"item_name" binding:"required,min=1,max=200" example:"Cement"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0" example:"20"`
	Unit         string  `json:"unit" binding:"max=20" example:"bags"`
	PricePerUnit float64 `json:"price_per_unit" binding:"required,gt=0" example:"25.00"`
	Total        float64 `json:"total" binding:"required,gt=0" example:"500.00"`
}

// CreateInvoiceRequest represents a request to create a new invoice
// @Description Request body for creating a new invoice
type CreateInvoiceRequest struct {
	PersonData              PersonDataRequest    `json:"person_data" binding:"required"`
	InvoiceType             string               `json:"invoice_type" binding:"required,invoicetype" example:"purchase"`
	Amount                  float64              `json:"amount" binding:"required,gt=0" example:"500.00"`
	Date                    string               `json:"date" binding:"required" example:"2024-03-10"`
	IsPaid                  bool                 `json:"is_paid" example:"false"`
	TravelText              string               `json:"travel_text" binding:"max=500" example:"Truck from quarry"`
	AdditionalChargePercent float64              `json:"additional_charge_percent" binding:"gte=0" example:"2.5"`
	AdditionalChargeAmount  float64              `json:"additional_charge_amount" binding:"gte=0" example:"12.50"`
	TransportCharge         float64              `json:"transport_charge" binding:"gte=0" example:"40.00"`
	Subtotal                float64              `json:"subtotal" binding:"gte=0" example:"500.00"`
	GrandTotal              float64              `json:"grand_total" binding:"gte=0" example:"552.50"`
	DocumentPath            string               `json:"document_path" binding:"max=500" example:""`
	ItemsData               []InvoiceItemRequest `json:"items_data" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest represents a full invoice update. Items replace the
// stored set wholesale when supplied.
// @Description Request body for updating an invoice
type UpdateInvoiceRequest struct {
	PersonData              *PersonDataRequest   `json:"person_data"`
	InvoiceType             string               `json:"invoice_type" binding:"required,invoicetype" example:"purchase"`
	Amount                  float64              `json:"amount" binding:"required,gt=0" example:"700.00"`
	Date                    string               `json:"date" binding:"required" example:"2024-03-12"`
	IsPaid                  bool                 `json:"is_paid" example:"true"`
	TravelText              string               `json:"travel_text" binding:"max=500"`
	AdditionalChargePercent float64              `json:"additional_charge_percent" binding:"gte=0"`
	AdditionalChargeAmount  float64              `json:"additional_charge_amount" binding:"gte=0"`
	TransportCharge         float64              `json:"transport_charge" binding:"gte=0"`
	Subtotal                float64              `json:"subtotal" binding:"gte=0"`
	GrandTotal              float64              `json:"grand_total" binding:"gte=0"`
	DocumentPath            string               `json:"document_path" binding:"max=500"`
	ItemsData               *[]InvoiceItemRequest `json:"items_data" binding:"omitempty,min=1,dive"`
}

// PatchInvoiceRequest represents a partial invoice update; absent fields are
// left untouched.
// @Description Request body for partially updating an invoice
type PatchInvoiceRequest struct {
	PersonData              *PersonDataRequest    `json:"person_data"`
	InvoiceType             *string               `json:"invoice_type" binding:"omitempty,invoicetype"`
	Amount                  *float64              `json:"amount" binding:"omitempty,gt=0"`
	Date                    *string               `json:"date"`
	IsPaid                  *bool                 `json:"is_paid"`
	TravelText              *string               `json:"travel_text" binding:"omitempty,max=500"`
	AdditionalChargePercent *float64              `json:"additional_charge_percent" binding:"omitempty,gte=0"`
	AdditionalChargeAmount  *float64              `json:"additional_charge_amount" binding:"omitempty,gte=0"`
	TransportCharge         *float64              `json:"transport_charge" binding:"omitempty,gte=0"`
	Subtotal                *float64              `json:"subtotal" binding:"omitempty,gte=0"`
	GrandTotal              *float64              `json:"grand_total" binding:"omitempty,gte=0"`
	DocumentPath            *string               `json:"document_path" binding:"omitempty,max=500"`
	ItemsData               *[]InvoiceItemRequest `json:"items_data" binding:"omitempty,min=1,dive"`
}

// compileFilter turns the raw query string into a normalized invoice filter.
// Malformed values are ignored rather than rejected.
func compileFilter(c *gin.Context) invoicing.InvoiceFilter {
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return invoicing.CompileFilter(params)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  Returns the filtered invoice list with purchase and sell totals over the full filtered set
// @Tags         invoices
// @Produce      json
// @Param        month query string false "Month name or number (1-12)"
// @Param        year query int false "Calendar year"
// @Param        search query string false "Person name or travel text substring"
// @Param        person_id query string false "Counterparty UUID"
// @Param        date_from query string false "Start date (YYYY-MM-DD)"
// @Param        date_to query string false "End date (YYYY-MM-DD)"
// @Param        is_paid query bool false "Payment status"
// @Param        skip query int false "Rows to skip"
// @Param        take query int false "Page size (max 1000)"
// @Success      200 {object} APIResponse[invoiceapp.ListResult]
// @Failure      500 {object} ErrorResponse
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	result, err := h.queries.List(c.Request.Context(), compileFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Purchases godoc
// @ID           listPurchaseInvoices
// @Summary      List purchase invoices
// @Description  Returns purchase invoices with paid and pending totals and the applied filter echo
// @Tags         invoices
// @Produce      json
// @Success      200 {object} APIResponse[invoiceapp.ScopedResult]
// @Failure      500 {object} ErrorResponse
// @Router       /invoices/purchase [get]
func (h *InvoiceHandler) Purchases(c *gin.Context) {
	result, err := h.queries.Purchases(c.Request.Context(), compileFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Sales godoc
// @ID           listSellInvoices
// @Summary      List sell invoices
// @Description  Returns sell invoices with paid and pending totals and the applied filter echo
// @Tags         invoices
// @Produce      json
// @Success      200 {object} APIResponse[invoiceapp.ScopedResult]
// @Failure      500 {object} ErrorResponse
// @Router       /invoices/sell [get]
func (h *InvoiceHandler) Sales(c *gin.Context) {
	result, err := h.queries.Sales(c.Request.Context(), compileFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Dashboard godoc
// @ID           invoiceDashboard
// @Summary      Invoice dashboard
// @Description  Returns cross-type totals, recent invoices and the pending breakdown by person
// @Tags         invoices
// @Produce      json
// @Success      200 {object} APIResponse[invoiceapp.DashboardResult]
// @Failure      500 {object} ErrorResponse
// @Router       /invoices/dashboard [get]
func (h *InvoiceHandler) Dashboard(c *gin.Context) {
	result, err := h.queries.Dashboard(c.Request.Context(), compileFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get invoice by ID
// @Description  Returns one invoice with its counterparty and line items
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceDetail]
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	result, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Create godoc
// @ID           createInvoice
// @Summary      Create a new invoice
// @Description  Creates an invoice with its counterparty and line items as one transactional unit
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} APIResponse[invoiceapp.InvoiceDetail]
// @Failure      400 {object} ErrorResponse
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	date, err := time.Parse(invoiceDateLayout, req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	input := invoiceapp.CreateInvoiceInput{
		Person: invoiceapp.PersonInput{
			Name: req.PersonData.Name,
			Role: req.PersonData.Role,
		},
		InvoiceType:             req.InvoiceType,
		Amount:                  toDecimal(req.Amount),
		Date:                    date,
		IsPaid:                  req.IsPaid,
		TravelText:              req.TravelText,
		AdditionalChargePercent: toDecimal(req.AdditionalChargePercent),
		AdditionalChargeAmount:  toDecimal(req.AdditionalChargeAmount),
		TransportCharge:         toDecimal(req.TransportCharge),
		Subtotal:                toDecimal(req.Subtotal),
		GrandTotal:              toDecimal(req.GrandTotal),
		DocumentPath:            req.DocumentPath,
		Items:                   toItemInputs(req.ItemsData),
	}

	result, err := h.writes.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update an invoice
// @Description  Replaces the invoice fields; supplied items replace the stored set wholesale
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body UpdateInvoiceRequest true "Invoice update request"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceDetail]
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	date, err := time.Parse(invoiceDateLayout, req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	input := invoiceapp.UpdateInvoiceInput{
		InvoiceType:             req.InvoiceType,
		Amount:                  toDecimal(req.Amount),
		Date:                    date,
		IsPaid:                  req.IsPaid,
		TravelText:              req.TravelText,
		AdditionalChargePercent: toDecimal(req.AdditionalChargePercent),
		AdditionalChargeAmount:  toDecimal(req.AdditionalChargeAmount),
		TransportCharge:         toDecimal(req.TransportCharge),
		Subtotal:                toDecimal(req.Subtotal),
		GrandTotal:              toDecimal(req.GrandTotal),
		DocumentPath:            req.DocumentPath,
	}
	if req.PersonData != nil {
		input.Person = &invoiceapp.PersonInput{
			Name: req.PersonData.Name,
			Role: req.PersonData.Role,
		}
	}
	if req.ItemsData != nil {
		input.Items = toItemInputs(*req.ItemsData)
		input.ReplaceItems = true
	}

	result, err := h.writes.Update(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Patch godoc
// @ID           patchInvoice
// @Summary      Partially update an invoice
// @Description  Updates only the supplied invoice fields; items are replaced only when supplied
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body PatchInvoiceRequest true "Invoice patch request"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceDetail]
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id} [patch]
func (h *InvoiceHandler) Patch(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	var req PatchInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	input := invoiceapp.PatchInvoiceInput{
		InvoiceType:  req.InvoiceType,
		IsPaid:       req.IsPaid,
		TravelText:   req.TravelText,
		DocumentPath: req.DocumentPath,
	}
	if req.PersonData != nil {
		input.Person = &invoiceapp.PersonInput{
			Name: req.PersonData.Name,
			Role: req.PersonData.Role,
		}
	}
	if req.Date != nil {
		date, err := time.Parse(invoiceDateLayout, *req.Date)
		if err != nil {
			h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		input.Date = &date
	}
	if req.Amount != nil {
		input.Amount = toDecimalPtr(*req.Amount)
	}
	if req.AdditionalChargePercent != nil {
		input.AdditionalChargePercent = toDecimalPtr(*req.AdditionalChargePercent)
	}
	if req.AdditionalChargeAmount != nil {
		input.AdditionalChargeAmount = toDecimalPtr(*req.AdditionalChargeAmount)
	}
	if req.TransportCharge != nil {
		input.TransportCharge = toDecimalPtr(*req.TransportCharge)
	}
	if req.Subtotal != nil {
		input.Subtotal = toDecimalPtr(*req.Subtotal)
	}
	if req.GrandTotal != nil {
		input.GrandTotal = toDecimalPtr(*req.GrandTotal)
	}
	if req.ItemsData != nil {
		input.Items = toItemInputs(*req.ItemsData)
		input.ReplaceItems = true
	}

	result, err := h.writes.PartialUpdate(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete an invoice
// @Description  Deletes the invoice and its line items
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      204 "No Content"
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	if err := h.writes.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MarkAllPaid godoc
// @ID           markAllInvoicesPaid
// @Summary      Mark all invoices of a person as paid
// @Description  Marks every unpaid invoice of the counterparty as paid
// @Tags         invoices
// @Produce      json
// @Param        person_id path string true "Person ID"
// @Success      200 {object} APIResponse[DetailData]
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/mark_all_paid/{person_id} [post]
func (h *InvoiceHandler) MarkAllPaid(c *gin.Context) {
	personID, err := uuid.Parse(c.Param("person_id"))
	if err != nil {
		h.BadRequest(c, "Invalid person ID format")
		return
	}

	count, err := h.writes.MarkAllPaid(c.Request.Context(), personID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, DetailData{Detail: fmt.Sprintf("%d invoices marked as paid.", count)})
}

// invoiceID binds and parses the :id path parameter.
func (h *InvoiceHandler) invoiceID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return uuid.Nil, false
	}
	return id, true
}

func toItemInputs(items []InvoiceItemRequest) []invoiceapp.InvoiceItemInput {
	inputs := make([]invoiceapp.InvoiceItemInput, len(items))
	for i, item := range items {
		inputs[i] = invoiceapp.InvoiceItemInput{
			ItemName:     item.ItemName,
			Quantity:     toDecimal(item.Quantity),
			Unit:         item.Unit,
			PricePerUnit: toDecimal(item.PricePerUnit),
			Total:        toDecimal(item.Total),
		}
	}
	return inputs
}
