package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/installment-engine/internal/domain"
	"github.com/segyhp/installment-engine/internal/mocks"
	"github.com/segyhp/installment-engine/pkg/calendar"
	customError "github.com/segyhp/installment-engine/pkg/errors"
)

type errorBody struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newTestRouter() (*mux.Router, *mocks.MockContractService, *mocks.MockReportService) {
	service := &mocks.MockContractService{}
	reports := &mocks.MockReportService{}
	h := NewContractHandler(service, reports)

	router := mux.NewRouter()
	h.RegisterRoutes(router.PathPrefix("/api/v1").Subrouter())
	return router, service, reports
}

func doRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewBuffer(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body
}

func TestContractHandler_CreateContract(t *testing.T) {
	validBody := map[string]interface{}{
		"client_name":     "Construtora Alfa",
		"contract_number": "CT-1",
		"start_date":      "2024-01-05",
		"end_date":        "2024-12-31",
		"global_value":    "40000.00",
		"expense_type":    1,
		"schedule":        map[string]interface{}{"kind": "FIXED_INTERVAL_DAYS", "interval_days": 30},
	}

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*mocks.MockContractService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "created",
			body: validBody,
			setupMock: func(s *mocks.MockContractService) {
				s.On("CreateContract", mock.Anything, mock.MatchedBy(func(req *domain.CreateContractRequest) bool {
					return req.ContractNumber == "CT-1" && req.GlobalValue.Equal(decimal.NewFromInt(40000))
				})).Return(&domain.Contract{ID: uuid.New(), ContractNumber: "CT-1", Status: domain.ContractStatusActive}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed json",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing client",
			body: map[string]interface{}{
				"contract_number": "CT-1", "start_date": "2024-01-05", "end_date": "2024-12-31",
				"global_value": "100", "schedule": map[string]interface{}{"kind": "FIXED_INTERVAL_DAYS", "interval_days": 30},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "zero global value",
			body: map[string]interface{}{
				"client_name": "A", "contract_number": "CT-1", "start_date": "2024-01-05", "end_date": "2024-12-31",
				"global_value": "0", "schedule": map[string]interface{}{"kind": "FIXED_INTERVAL_DAYS", "interval_days": 30},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown schedule kind",
			body: map[string]interface{}{
				"client_name": "A", "contract_number": "CT-1", "start_date": "2024-01-05", "end_date": "2024-12-31",
				"global_value": "100", "schedule": map[string]interface{}{"kind": "WEEKLY"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate contract",
			body: validBody,
			setupMock: func(s *mocks.MockContractService) {
				s.On("CreateContract", mock.Anything, mock.Anything).
					Return(nil, customError.WrapContractAlreadyExists("Construtora Alfa", "CT-1")).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   customError.ErrCodeContractAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service, _ := newTestRouter()
			if tt.setupMock != nil {
				tt.setupMock(service)
			}

			w := doRequest(router, http.MethodPost, "/api/v1/contracts", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
			}
			if tt.setupMock == nil {
				service.AssertNotCalled(t, "CreateContract", mock.Anything, mock.Anything)
			}
			service.AssertExpectations(t)
		})
	}
}

func TestContractHandler_GetContract(t *testing.T) {
	router, service, _ := newTestRouter()

	service.On("GetContract", mock.Anything, "Construtora Alfa", "CT-1").
		Return(&domain.Contract{ContractNumber: "CT-1", ClientName: "Construtora Alfa"}, nil)
	service.On("GetContract", mock.Anything, "Construtora Alfa", "CT-404").
		Return(nil, customError.WrapContractNotFound("CT-404"))

	w := doRequest(router, http.MethodGet, "/api/v1/clients/Construtora%20Alfa/contracts/CT-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool            `json:"success"`
		Data    domain.Contract `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "CT-1", body.Data.ContractNumber)

	w = doRequest(router, http.MethodGet, "/api/v1/clients/Construtora%20Alfa/contracts/CT-404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, customError.ErrCodeContractNotFound, decodeError(t, w).Code)
}

func TestContractHandler_DeactivateContract(t *testing.T) {
	router, service, _ := newTestRouter()

	service.On("Deactivate", mock.Anything, "A", "CT-1").Return(nil).Once()
	service.On("Deactivate", mock.Anything, "A", "CT-1").
		Return(customError.WrapInvalidStateTransition("contract CT-1", domain.ContractStatusInactive, domain.ContractStatusInactive)).Once()

	w := doRequest(router, http.MethodDelete, "/api/v1/clients/A/contracts/CT-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/clients/A/contracts/CT-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestContractHandler_AddAdministrator(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]interface{}
		mockCalled     bool
		expectedStatus int
	}{
		{
			name: "valid CNPJ",
			body: map[string]interface{}{
				"tax_id": "11.222.333/0001-81", "name": "Administradora", "share_type": "PERCENTAGE",
				"share_value": "10", "payment_method": "EVENTS",
			},
			mockCalled:     true,
			expectedStatus: http.StatusCreated,
		},
		{
			name: "invalid check digits",
			body: map[string]interface{}{
				"tax_id": "11.222.333/0001-80", "name": "Administradora", "share_type": "PERCENTAGE",
				"share_value": "10", "payment_method": "EVENTS",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "negative share",
			body: map[string]interface{}{
				"tax_id": "52998224725", "name": "Administradora", "share_type": "PERCENTAGE",
				"share_value": "-1", "payment_method": "EVENTS",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown payment method",
			body: map[string]interface{}{
				"tax_id": "52998224725", "name": "Administradora", "share_type": "PERCENTAGE",
				"share_value": "10", "payment_method": "BARTER",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service, _ := newTestRouter()
			if tt.mockCalled {
				service.On("AddAdministrator", mock.Anything, "A", "CT-1", mock.AnythingOfType("*domain.AddAdministratorRequest")).
					Return(&domain.AddAdministratorResponse{
						Administrator: &domain.ContractAdministrator{Name: "Administradora"},
						Warnings:      []domain.Warning{{Code: domain.WarningShareOver100, Message: "over"}},
					}, nil).Once()
			}

			w := doRequest(router, http.MethodPost, "/api/v1/clients/A/contracts/CT-1/administrators", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.mockCalled {
				assert.Contains(t, w.Body.String(), domain.WarningShareOver100)
			} else {
				service.AssertNotCalled(t, "AddAdministrator", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			service.AssertExpectations(t)
		})
	}
}

func TestContractHandler_CompleteEvent(t *testing.T) {
	router, service, _ := newTestRouter()
	completion := calendar.Date(2024, 3, 1)

	service.On("CompleteEvent", mock.Anything, "A", "CT-1", 1, completion).
		Return(&domain.DistributionResult{Installments: []*domain.Installment{{Amount: decimal.NewFromInt(1000)}}}, nil).Once()
	service.On("CompleteEvent", mock.Anything, "A", "CT-1", 1, completion).
		Return(nil, customError.WrapInvalidStateTransition("event 1", domain.EventStatusCompleted, domain.EventStatusCompleted)).Once()
	service.On("CompleteEvent", mock.Anything, "A", "CT-1", 9, completion).
		Return(nil, customError.WrapEventNotFound("CT-1", 9)).Once()

	body := map[string]string{"completion_date": "2024-03-01"}

	w := doRequest(router, http.MethodPost, "/api/v1/clients/A/contracts/CT-1/events/1/complete", body)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(router, http.MethodPost, "/api/v1/clients/A/contracts/CT-1/events/1/complete", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, customError.ErrCodeInvalidStateTransition, decodeError(t, w).Code)

	w = doRequest(router, http.MethodPost, "/api/v1/clients/A/contracts/CT-1/events/9/complete", body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/clients/A/contracts/CT-1/events/x/complete", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/clients/A/contracts/CT-1/events/1/complete", map[string]string{"completion_date": "01/03/2024"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	service.AssertExpectations(t)
}

func TestContractHandler_AddEvent(t *testing.T) {
	router, service, _ := newTestRouter()

	service.On("AddEvent", mock.Anything, "A", "CT-1", mock.MatchedBy(func(req *domain.AddEventRequest) bool {
		return req.Percentage.Equal(decimal.NewFromInt(25))
	})).Return(&domain.Event{ID: 1, Status: domain.EventStatusPending}, nil).Once()

	w := doRequest(router, http.MethodPost, "/api/v1/clients/A/contracts/CT-1/events", map[string]interface{}{
		"description": "Fundação", "percentage": 25,
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(router, http.MethodPost, "/api/v1/clients/A/contracts/CT-1/events", map[string]interface{}{
		"description": "Fundação", "percentage": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	service.AssertExpectations(t)
}

func TestContractHandler_Installments(t *testing.T) {
	router, service, _ := newTestRouter()

	service.On("GenerateInstallments", mock.Anything, "A", "CT-1").
		Return(&domain.DistributionResult{Installments: []*domain.Installment{{Amount: decimal.NewFromInt(10)}}}, nil).Once()
	service.On("GetInstallments", mock.Anything, "A", "CT-1").
		Return([]*domain.Installment{{Amount: decimal.NewFromInt(10)}}, nil).Once()

	w := doRequest(router, http.MethodPost, "/api/v1/clients/A/contracts/CT-1/installments", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/clients/A/contracts/CT-1/installments", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	service.AssertExpectations(t)
}

func TestContractHandler_PreviewPlan(t *testing.T) {
	router, service, _ := newTestRouter()

	valid := map[string]interface{}{
		"reference":         "Cimento",
		"payee_tax_id":      "529.982.247-25",
		"expense_type":      1,
		"payment_method":    "PIX",
		"total_amount":      "1000.00",
		"installment_count": 3,
		"base_date":         "2024-01-05",
		"schedule":          map[string]interface{}{"kind": "EXPLICIT_DATES", "dates": []string{"2024-02-01"}},
	}

	service.On("PreviewPlan", mock.Anything, mock.Anything).Return(nil, customError.WrapCountMismatch(3, 1)).Once()

	w := doRequest(router, http.MethodPost, "/api/v1/plans/preview", valid)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, customError.ErrCodeCountMismatch, decodeError(t, w).Code)

	valid["schedule"] = map[string]interface{}{"kind": "EXPLICIT_DATES", "dates": []string{"01/02/2024"}}
	w = doRequest(router, http.MethodPost, "/api/v1/plans/preview", valid)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	service.AssertExpectations(t)
}

func TestContractHandler_PeriodPayment(t *testing.T) {
	router, service, _ := newTestRouter()

	service.On("PeriodPayment", mock.Anything, "A", "CT-1", "52998224725", mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(20000))
	})).Return(decimal.NewFromInt(1000), nil).Once()

	w := doRequest(router, http.MethodGet, "/api/v1/clients/A/contracts/CT-1/administrators/52998224725/payment?period_total=20000", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"amount":"1000"`)

	w = doRequest(router, http.MethodGet, "/api/v1/clients/A/contracts/CT-1/administrators/52998224725/payment?period_total=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/clients/A/contracts/CT-1/administrators/52998224725/payment", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	service.AssertExpectations(t)
}

func TestContractHandler_GetPeriod(t *testing.T) {
	router, service, _ := newTestRouter()

	service.On("Period", calendar.Date(2024, 3, 10), 5).Return(&domain.PeriodResponse{Date: "2024-03-10"}).Once()

	w := doRequest(router, http.MethodGet, "/api/v1/periods/2024-03-10?expense_type=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/periods/10-03-2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/periods/2024-03-10?expense_type=8", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	service.AssertExpectations(t)
}

func TestContractHandler_ExportReport(t *testing.T) {
	router, _, reports := newTestRouter()

	period, err := calendar.ParsePeriodDate("2024-03-05")
	require.NoError(t, err)

	reports.On("ExportPeriod", mock.Anything, period, mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = args.Get(2).(io.Writer).Write([]byte("xlsx"))
		}).
		Return(nil).Once()

	w := doRequest(router, http.MethodGet, "/api/v1/reports/2024-03-05.xlsx", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "quinzena_2024-03-05.xlsx")
	assert.Equal(t, "xlsx", w.Body.String())

	w = doRequest(router, http.MethodGet, "/api/v1/reports/2024-03-07.xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	reports.AssertExpectations(t)
}
