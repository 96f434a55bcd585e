package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/pkg/calendar"
	"github.com/segyhp/installment-engine/pkg/response"
	"github.com/segyhp/installment-engine/pkg/utils"
)

// ContractService is what the handlers need from the service layer.
type ContractService interface {
	CreateContract(ctx context.Context, request *domain.CreateContractRequest) (*domain.Contract, error)
	GetContract(ctx context.Context, clientName, contractNumber string) (*domain.Contract, error)
	Deactivate(ctx context.Context, clientName, contractNumber string) error
	AddAdministrator(ctx context.Context, clientName, contractNumber string, request *domain.AddAdministratorRequest) (*domain.AddAdministratorResponse, error)
	AddEvent(ctx context.Context, clientName, contractNumber string, request *domain.AddEventRequest) (*domain.Event, error)
	CompleteEvent(ctx context.Context, clientName, contractNumber string, eventID int, completionDate time.Time) (*domain.DistributionResult, error)
	GenerateInstallments(ctx context.Context, clientName, contractNumber string) (*domain.DistributionResult, error)
	GetInstallments(ctx context.Context, clientName, contractNumber string) ([]*domain.Installment, error)
	PreviewPlan(ctx context.Context, request *domain.PreviewPlanRequest) (*domain.PreviewPlanResponse, error)
	PeriodPayment(ctx context.Context, clientName, contractNumber, taxID string, periodTotal decimal.Decimal) (decimal.Decimal, error)
	Period(date time.Time, expenseType int) *domain.PeriodResponse
}

// ReportService exports quinzena workbooks.
type ReportService interface {
	ExportPeriod(ctx context.Context, period calendar.PeriodDate, w io.Writer) error
}

type ContractHandler struct {
	service   ContractService
	reports   ReportService
	validator *validator.Validate
}

func NewContractHandler(service ContractService, reports ReportService) *ContractHandler {
	return &ContractHandler{
		service:   service,
		reports:   reports,
		validator: NewValidator(),
	}
}

// RegisterRoutes mounts the API under router.
func (h *ContractHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/plans/preview", h.PreviewPlan).Methods("POST")
	router.HandleFunc("/periods/{date}", h.GetPeriod).Methods("GET")
	router.HandleFunc("/reports/{period}.xlsx", h.ExportReport).Methods("GET")
	router.HandleFunc("/contracts", h.CreateContract).Methods("POST")

	contract := router.PathPrefix("/clients/{client}/contracts/{number}").Subrouter()
	contract.HandleFunc("", h.GetContract).Methods("GET")
	contract.HandleFunc("", h.DeactivateContract).Methods("DELETE")
	contract.HandleFunc("/administrators", h.AddAdministrator).Methods("POST")
	contract.HandleFunc("/administrators/{taxId}/payment", h.PeriodPayment).Methods("GET")
	contract.HandleFunc("/events", h.AddEvent).Methods("POST")
	contract.HandleFunc("/events/{eventId}/complete", h.CompleteEvent).Methods("POST")
	contract.HandleFunc("/installments", h.GenerateInstallments).Methods("POST")
	contract.HandleFunc("/installments", h.GetInstallments).Methods("GET")
}

// decode reads a JSON body into dst and validates it
func (h *ContractHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}
	return true
}

func contractKey(r *http.Request) (string, string) {
	vars := mux.Vars(r)
	return vars["client"], vars["number"]
}

// PreviewPlan handles POST /api/v1/plans/preview
func (h *ContractHandler) PreviewPlan(w http.ResponseWriter, r *http.Request) {
	var req domain.PreviewPlanRequest
	if !h.decode(w, r, &req) {
		return
	}

	preview, err := h.service.PreviewPlan(r.Context(), &req)
	if err != nil {
		response.FromError(w, "Failed to preview plan", err)
		return
	}

	response.Success(w, preview)
}

// GetPeriod handles GET /api/v1/periods/{date}?expense_type=
func (h *ContractHandler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		response.BadRequest(w, "Invalid date, expected YYYY-MM-DD", err)
		return
	}

	expenseType := 0
	if raw := r.URL.Query().Get("expense_type"); raw != "" {
		expenseType, err = strconv.Atoi(raw)
		if err != nil || expenseType < 1 || expenseType > 7 {
			response.BadRequest(w, "Invalid expense type", err)
			return
		}
	}

	response.Success(w, h.service.Period(date, expenseType))
}

// ExportReport handles GET /api/v1/reports/{period}.xlsx
func (h *ContractHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSuffix(mux.Vars(r)["period"], ".xlsx")
	period, err := calendar.ParsePeriodDate(raw)
	if err != nil {
		response.BadRequest(w, "Invalid period", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=quinzena_%s.xlsx", period))
	if err := h.reports.ExportPeriod(r.Context(), period, w); err != nil {
		w.Header().Del("Content-Disposition")
		response.FromError(w, "Failed to export period", err)
		return
	}
}

// CreateContract handles POST /api/v1/contracts
func (h *ContractHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContractRequest
	if !h.decode(w, r, &req) {
		return
	}

	contract, err := h.service.CreateContract(r.Context(), &req)
	if err != nil {
		response.FromError(w, "Failed to create contract", err)
		return
	}

	response.Created(w, contract)
}

// GetContract handles GET /api/v1/clients/{client}/contracts/{number}
func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	client, number := contractKey(r)

	contract, err := h.service.GetContract(r.Context(), client, number)
	if err != nil {
		response.FromError(w, "Failed to get contract", err)
		return
	}

	response.Success(w, contract)
}

// DeactivateContract handles DELETE /api/v1/clients/{client}/contracts/{number}
func (h *ContractHandler) DeactivateContract(w http.ResponseWriter, r *http.Request) {
	client, number := contractKey(r)

	if err := h.service.Deactivate(r.Context(), client, number); err != nil {
		response.FromError(w, "Failed to deactivate contract", err)
		return
	}

	response.Success(w, map[string]string{
		"contract_number": number,
		"status":          domain.ContractStatusInactive,
	})
}

// AddAdministrator handles POST .../administrators
func (h *ContractHandler) AddAdministrator(w http.ResponseWriter, r *http.Request) {
	client, number := contractKey(r)

	var req domain.AddAdministratorRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.AddAdministrator(r.Context(), client, number, &req)
	if err != nil {
		response.FromError(w, "Failed to add administrator", err)
		return
	}

	response.Created(w, result)
}

// PeriodPayment handles GET .../administrators/{taxId}/payment?period_total=
func (h *ContractHandler) PeriodPayment(w http.ResponseWriter, r *http.Request) {
	client, number := contractKey(r)
	taxID := mux.Vars(r)["taxId"]

	total, err := utils.DecimalFromString(r.URL.Query().Get("period_total"))
	if err != nil {
		response.BadRequest(w, "Invalid period total", err)
		return
	}

	amount, err := h.service.PeriodPayment(r.Context(), client, number, taxID, total)
	if err != nil {
		response.FromError(w, "Failed to compute payment", err)
		return
	}

	response.Success(w, map[string]interface{}{
		"tax_id":       taxID,
		"period_total": total,
		"amount":       amount,
	})
}

// AddEvent handles POST .../events
func (h *ContractHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	client, number := contractKey(r)

	var req domain.AddEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	event, err := h.service.AddEvent(r.Context(), client, number, &req)
	if err != nil {
		response.FromError(w, "Failed to add event", err)
		return
	}

	response.Created(w, event)
}

// CompleteEvent handles POST .../events/{eventId}/complete
func (h *ContractHandler) CompleteEvent(w http.ResponseWriter, r *http.Request) {
	client, number := contractKey(r)

	eventID, err := strconv.Atoi(mux.Vars(r)["eventId"])
	if err != nil || eventID <= 0 {
		response.BadRequest(w, "Invalid event id", err)
		return
	}

	var req domain.CompleteEventRequest
	if !h.decode(w, r, &req) {
		return
	}
	completion, err := calendar.ParseDate(req.CompletionDate)
	if err != nil {
		response.BadRequest(w, "Invalid completion date", err)
		return
	}

	result, err := h.service.CompleteEvent(r.Context(), client, number, eventID, completion)
	if err != nil {
		response.FromError(w, "Failed to complete event", err)
		return
	}

	response.Success(w, result)
}

// GenerateInstallments handles POST .../installments
func (h *ContractHandler) GenerateInstallments(w http.ResponseWriter, r *http.Request) {
	client, number := contractKey(r)

	result, err := h.service.GenerateInstallments(r.Context(), client, number)
	if err != nil {
		response.FromError(w, "Failed to generate installments", err)
		return
	}

	response.Created(w, result)
}

// GetInstallments handles GET .../installments
func (h *ContractHandler) GetInstallments(w http.ResponseWriter, r *http.Request) {
	client, number := contractKey(r)

	installments, err := h.service.GetInstallments(r.Context(), client, number)
	if err != nil {
		response.FromError(w, "Failed to get installments", err)
		return
	}

	response.Success(w, installments)
}
