package refund_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/palmgrove/refund-service/internal/domain"
	"github.com/palmgrove/refund-service/internal/domain/ports"
	refundHandler "github.com/palmgrove/refund-service/internal/handlers/refund"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRefundService mocks the refund service
type MockRefundService struct {
	mock.Mock
}

func (m *MockRefundService) Create(ctx context.Context, req ports.CreateRefundRequest) (*domain.Refund, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Refund), args.Error(1)
}

func (m *MockRefundService) Update(ctx context.Context, id int64, patch ports.UpdateRefundRequest, actor string) (*domain.Refund, error) {
	args := m.Called(ctx, id, patch, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Refund), args.Error(1)
}

func (m *MockRefundService) Cancel(ctx context.Context, id int64, actor string) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *MockRefundService) GetByID(ctx context.Context, id int64) (*ports.RefundWithPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.RefundWithPayment), args.Error(1)
}

func (m *MockRefundService) GetByReference(ctx context.Context, reference string) (*ports.RefundWithPayment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.RefundWithPayment), args.Error(1)
}

func (m *MockRefundService) List(ctx context.Context) ([]*domain.Refund, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Refund), args.Error(1)
}

func (m *MockRefundService) ListByStatus(ctx context.Context, status domain.RefundStatus) ([]*domain.Refund, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Refund), args.Error(1)
}

func (m *MockRefundService) ListByUser(ctx context.Context, requestedBy string) ([]*domain.Refund, error) {
	args := m.Called(ctx, requestedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Refund), args.Error(1)
}

func (m *MockRefundService) ListByPayment(ctx context.Context, paymentID int64) ([]*domain.Refund, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Refund), args.Error(1)
}

func (m *MockRefundService) ListByBooking(ctx context.Context, bookingID int64) ([]*domain.Refund, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Refund), args.Error(1)
}

func (m *MockRefundService) ListByEventBooking(ctx context.Context, eventBookingID int64) ([]*domain.Refund, error) {
	args := m.Called(ctx, eventBookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Refund), args.Error(1)
}

func (m *MockRefundService) ListPending(ctx context.Context) ([]*domain.Refund, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Refund), args.Error(1)
}

func (m *MockRefundService) Stats(ctx context.Context, statuses ...domain.RefundStatus) (*ports.RefundStats, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.RefundStats), args.Error(1)
}

type noopLogger struct{}

func (noopLogger) Info(msg string, fields ...ports.Field)  {}
func (noopLogger) Error(msg string, fields ...ports.Field) {}
func (noopLogger) Warn(msg string, fields ...ports.Field)  {}
func (noopLogger) Debug(msg string, fields ...ports.Field) {}

func setupRouter(svc ports.RefundService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	refundHandler.NewHandler(svc, noopLogger{}).RegisterRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Create_Success(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	created := &domain.Refund{
		ID:          1,
		Reference:   "RF20260830042",
		PaymentID:   10,
		Amount:      decimal.NewFromFloat(50.00),
		Status:      domain.RefundStatusPending,
		Type:        domain.RefundTypePartial,
		Reason:      "late checkout fee waived",
		RequestedBy: "system",
	}

	svc.On("Create", mock.Anything, mock.MatchedBy(func(req ports.CreateRefundRequest) bool {
		return req.PaymentID == 10 &&
			req.Type == domain.RefundTypePartial &&
			req.RequestedBy == "system"
	})).Return(created, nil)

	w := doRequest(router, http.MethodPost, "/api/refunds", gin.H{
		"paymentId":    10,
		"refundAmount": "50.00",
		"refundType":   "PARTIAL_REFUND",
		"refundReason": "late checkout fee waived",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "RF20260830042", resp["refundReference"])
	assert.Equal(t, "PENDING", resp["refundStatus"])
	svc.AssertExpectations(t)
}

func TestHandler_Create_InvalidType(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/refunds", gin.H{
		"paymentId":    10,
		"refundAmount": "50.00",
		"refundType":   "REVERSAL",
		"refundReason": "test",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandler_Create_MissingBody(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/refunds", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Create_DomainErrorsMapToBadRequest(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	svc.On("Create", mock.Anything, mock.Anything).
		Return(nil, domain.NewDomainError(domain.ErrorCodeRefundInvalidAmount, "refund amount cannot exceed payment amount"))

	w := doRequest(router, http.MethodPost, "/api/refunds", gin.H{
		"paymentId":    10,
		"refundAmount": "500.00",
		"refundType":   "FULL_REFUND",
		"refundReason": "overcharge",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.ErrorCodeRefundInvalidAmount), resp["code"])
}

func TestHandler_GetByID_NotFound(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	svc.On("GetByID", mock.Anything, int64(404)).
		Return(nil, domain.NewDomainError(domain.ErrorCodeRefundNotFound, "refund not found"))

	w := doRequest(router, http.MethodGet, "/api/refunds/404", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_GetByID_InvalidID(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/refunds/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestHandler_GetByID_IncludesPayment(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	detail := &ports.RefundWithPayment{
		Refund: &domain.Refund{
			ID:        1,
			Reference: "RF20260830042",
			PaymentID: 10,
			Amount:    decimal.NewFromFloat(50.00),
			Status:    domain.RefundStatusPending,
			Type:      domain.RefundTypePartial,
		},
		Payment: &domain.Payment{
			ID:     10,
			Amount: decimal.NewFromFloat(100.00),
			Status: domain.PaymentStatusPartiallyRefunded,
			Method: "card",
		},
	}

	svc.On("GetByID", mock.Anything, int64(1)).Return(detail, nil)

	w := doRequest(router, http.MethodGet, "/api/refunds/1", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	payment, ok := resp["payment"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "PARTIALLY_REFUNDED", payment["paymentStatus"])
}

func TestHandler_GetByReference(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	detail := &ports.RefundWithPayment{
		Refund: &domain.Refund{ID: 1, Reference: "RF20260830042", Status: domain.RefundStatusPending},
	}
	svc.On("GetByReference", mock.Anything, "RF20260830042").Return(detail, nil)

	w := doRequest(router, http.MethodGet, "/api/refunds/reference/RF20260830042", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_Update_InvalidStatus(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	w := doRequest(router, http.MethodPut, "/api/refunds/1", gin.H{
		"refundStatus": "SHIPPED",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Update_Success(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	updated := &domain.Refund{ID: 1, Status: domain.RefundStatusApproved}
	svc.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(patch ports.UpdateRefundRequest) bool {
		return patch.Status != nil && *patch.Status == domain.RefundStatusApproved
	}), "system").Return(updated, nil)

	w := doRequest(router, http.MethodPut, "/api/refunds/1", gin.H{
		"refundStatus": "APPROVED",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "APPROVED", resp["refundStatus"])
}

func TestHandler_Approve_ConvenienceRoute(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	updated := &domain.Refund{ID: 1, Status: domain.RefundStatusApproved}
	svc.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(patch ports.UpdateRefundRequest) bool {
		return patch.Status != nil && *patch.Status == domain.RefundStatusApproved
	}), "system").Return(updated, nil)

	w := doRequest(router, http.MethodPost, "/api/refunds/1/approve", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Process_CarriesMethod(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	updated := &domain.Refund{ID: 1, Status: domain.RefundStatusProcessing}
	svc.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(patch ports.UpdateRefundRequest) bool {
		return patch.Status != nil && *patch.Status == domain.RefundStatusProcessing &&
			patch.Method != nil && *patch.Method == "bank_transfer"
	}), "system").Return(updated, nil)

	w := doRequest(router, http.MethodPost, "/api/refunds/1/process", gin.H{
		"refundMethod": "bank_transfer",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Cancel_Success(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	svc.On("Cancel", mock.Anything, int64(1), "system").Return(nil)

	w := doRequest(router, http.MethodPost, "/api/refunds/1/cancel", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Cancel_CompletedMapsToBadRequest(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	svc.On("Cancel", mock.Anything, int64(1), "system").
		Return(domain.NewDomainError(domain.ErrorCodeRefundInvalidState, "cannot cancel a completed refund"))

	w := doRequest(router, http.MethodPost, "/api/refunds/1/cancel", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListByStatus_InvalidStatus(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/refunds/status/SHIPPED", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListByStatus(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	refunds := []*domain.Refund{{ID: 1, Status: domain.RefundStatusPending}}
	svc.On("ListByStatus", mock.Anything, domain.RefundStatusPending).Return(refunds, nil)

	w := doRequest(router, http.MethodGet, "/api/refunds/status/pending", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}

func TestHandler_ListEmpty_ReturnsEmptyArray(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	svc.On("List", mock.Anything).Return([]*domain.Refund{}, nil)

	w := doRequest(router, http.MethodGet, "/api/refunds", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestHandler_Stats_FlatKeys(t *testing.T) {
	svc := new(MockRefundService)
	router := setupRouter(svc)

	stats := &ports.RefundStats{
		ByStatus: map[domain.RefundStatus]ports.StatusMetrics{
			domain.RefundStatusPending:   {Count: 3, Amount: decimal.NewFromFloat(120.50)},
			domain.RefundStatusCompleted: {Count: 0, Amount: decimal.Zero},
		},
	}
	svc.On("Stats", mock.Anything, mock.Anything).Return(stats, nil)

	w := doRequest(router, http.MethodGet, "/api/refunds/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["pendingCount"])
	assert.Contains(t, resp, "pendingAmount")
	assert.Equal(t, float64(0), resp["completedCount"])
}
