package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/api/middleware"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/service"
)

type stubUserService struct {
	user domain.User
}

func (s *stubUserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	return s.user, nil
}

type stubTransactionService struct {
	transaction domain.Transaction
	err         error
}

func (s *stubTransactionService) CreateTransaction(ctx context.Context, userID, eventID uint, quantity, pointsUsed int, couponCode string) (domain.Transaction, error) {
	return s.transaction, s.err
}

func (s *stubTransactionService) GetTransaction(ctx context.Context, id uint, user domain.User) (domain.Transaction, error) {
	return s.transaction, s.err
}

func (s *stubTransactionService) ListMyTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	return []domain.Transaction{s.transaction}, s.err
}

func (s *stubTransactionService) ListEventTransactions(ctx context.Context, eventID, organizerID uint) ([]domain.Transaction, error) {
	return []domain.Transaction{s.transaction}, s.err
}

func (s *stubTransactionService) SubmitPaymentProof(ctx context.Context, id, userID uint, file io.Reader, contentType string) (domain.Transaction, error) {
	return s.transaction, s.err
}

func (s *stubTransactionService) Confirm(ctx context.Context, id, organizerID uint) (domain.Transaction, error) {
	return s.transaction, s.err
}

func (s *stubTransactionService) Reject(ctx context.Context, id, organizerID uint) (domain.Transaction, error) {
	return s.transaction, s.err
}

func newTransactionTestRouter(svc *stubTransactionService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewTransactionHandler(svc, &stubUserService{user: domain.User{ID: 1, Role: domain.RoleCustomer}})

	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		ctx.Set(middleware.ContextKeyUserID, uint(1))
	})
	router.POST("/transactions", handler.HandleCreateTransaction)
	router.GET("/transactions/:transactionID", handler.HandleGetTransaction)
	router.POST("/transactions/:transactionID/proof", handler.HandleSubmitPaymentProof)
	router.POST("/transactions/:transactionID/confirm", handler.HandleConfirmTransaction)

	return router
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	return recorder
}

func TestTransactionHandler_HandleCreateTransaction(t *testing.T) {
	validBody := map[string]any{"eventId": 10, "quantity": 2, "pointsUsed": 0}

	t.Run("created", func(t *testing.T) {
		svc := &stubTransactionService{transaction: domain.Transaction{ID: 1, Status: domain.StatusWaitingPayment}}
		router := newTransactionTestRouter(svc)

		recorder := performJSON(t, router, http.MethodPost, "/transactions", validBody)

		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.Contains(t, recorder.Body.String(), string(domain.StatusWaitingPayment))
	})

	t.Run("missing quantity is a bad request", func(t *testing.T) {
		router := newTransactionTestRouter(&stubTransactionService{})

		recorder := performJSON(t, router, http.MethodPost, "/transactions", map[string]any{"eventId": 10})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("insufficient seats maps to 422", func(t *testing.T) {
		svc := &stubTransactionService{err: service.ErrInsufficientSeats}
		router := newTransactionTestRouter(svc)

		recorder := performJSON(t, router, http.MethodPost, "/transactions", validBody)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})

	t.Run("insufficient points maps to 422", func(t *testing.T) {
		svc := &stubTransactionService{err: service.ErrInsufficientPoints}
		router := newTransactionTestRouter(svc)

		recorder := performJSON(t, router, http.MethodPost, "/transactions", validBody)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})

	t.Run("invalid coupon maps to 422 with the reason", func(t *testing.T) {
		svc := &stubTransactionService{err: &service.CouponInvalidError{Reason: domain.CouponExpired}}
		router := newTransactionTestRouter(svc)

		recorder := performJSON(t, router, http.MethodPost, "/transactions", validBody)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		assert.Contains(t, recorder.Body.String(), string(domain.CouponExpired))
	})

	t.Run("unknown event maps to 404", func(t *testing.T) {
		svc := &stubTransactionService{err: service.ErrEventNotFound}
		router := newTransactionTestRouter(svc)

		recorder := performJSON(t, router, http.MethodPost, "/transactions", validBody)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("unexpected errors map to 500 with a generic body", func(t *testing.T) {
		svc := &stubTransactionService{err: assert.AnError}
		router := newTransactionTestRouter(svc)

		recorder := performJSON(t, router, http.MethodPost, "/transactions", validBody)

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "internal server error")
		assert.NotContains(t, recorder.Body.String(), assert.AnError.Error())
	})
}

func TestTransactionHandler_HandleGetTransaction(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc := &stubTransactionService{err: service.ErrTransactionNotFound}
		router := newTransactionTestRouter(svc)

		recorder := performJSON(t, router, http.MethodGet, "/transactions/42", nil)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("foreign transaction is forbidden", func(t *testing.T) {
		svc := &stubTransactionService{err: service.ErrTransactionAccessDenied}
		router := newTransactionTestRouter(svc)

		recorder := performJSON(t, router, http.MethodGet, "/transactions/42", nil)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("invalid ID is a bad request", func(t *testing.T) {
		router := newTransactionTestRouter(&stubTransactionService{})

		recorder := performJSON(t, router, http.MethodGet, "/transactions/abc", nil)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestTransactionHandler_HandleSubmitPaymentProof(t *testing.T) {
	t.Run("missing file is a bad request", func(t *testing.T) {
		router := newTransactionTestRouter(&stubTransactionService{})

		req := httptest.NewRequest(http.MethodPost, "/transactions/1/proof", strings.NewReader(""))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestTransactionHandler_HandleConfirmTransaction(t *testing.T) {
	t.Run("invalid status maps to 422", func(t *testing.T) {
		svc := &stubTransactionService{err: service.ErrInvalidTransactionStatus}
		router := newTransactionTestRouter(svc)

		recorder := performJSON(t, router, http.MethodPost, "/transactions/1/confirm", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})

	t.Run("non-organizer is forbidden", func(t *testing.T) {
		svc := &stubTransactionService{err: service.ErrNotEventOrganizer}
		router := newTransactionTestRouter(svc)

		recorder := performJSON(t, router, http.MethodPost, "/transactions/1/confirm", nil)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}
