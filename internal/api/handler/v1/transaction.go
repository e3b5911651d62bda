package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/api/handler/v1/request"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/api/handler/v1/response"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/service"
)

const maxProofSizeBytes = 5 << 20

type TransactionService interface {
	CreateTransaction(ctx context.Context, userID, eventID uint, quantity, pointsUsed int, couponCode string) (domain.Transaction, error)
	GetTransaction(ctx context.Context, id uint, user domain.User) (domain.Transaction, error)
	ListMyTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error)
	ListEventTransactions(ctx context.Context, eventID, organizerID uint) ([]domain.Transaction, error)
	SubmitPaymentProof(ctx context.Context, id, userID uint, file io.Reader, contentType string) (domain.Transaction, error)
	Confirm(ctx context.Context, id, organizerID uint) (domain.Transaction, error)
	Reject(ctx context.Context, id, organizerID uint) (domain.Transaction, error)
}

type TransactionHandler struct {
	svc  TransactionService
	uSvc UserService
}

func NewTransactionHandler(svc TransactionService, uSvc UserService) *TransactionHandler {
	return &TransactionHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateTransaction godoc
// @Summary      Create a purchase transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateTransactionRequest true "request body"
// @Success      201      {object}  domain.Transaction
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Security     BearerAuth
// @Router       /transactions [post]
func (h *TransactionHandler) HandleCreateTransaction(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.CreateTransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	transaction, err := h.svc.CreateTransaction(ctx.Request.Context(), user.ID, req.EventID, req.Quantity, req.PointsUsed, req.CouponCode)
	if err != nil {
		var couponErr *service.CouponInvalidError

		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", req.EventID))
		case errors.Is(err, service.ErrInvalidQuantity) || errors.Is(err, service.ErrInvalidPointAmount):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.As(err, &couponErr),
			errors.Is(err, service.ErrEventStarted),
			errors.Is(err, service.ErrPointsExceedTotal),
			errors.Is(err, service.ErrInsufficientSeats),
			errors.Is(err, service.ErrInsufficientPoints),
			errors.Is(err, service.ErrCouponUsageExceeded):
			response.RenderErr(ctx, response.ErrUnprocessable(err))
		default:
			err = fmt.Errorf("v1.HandleCreateTransaction -> h.svc.CreateTransaction -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, transaction)
}

// HandleGetTransaction godoc
// @Summary      Get a transaction
// @Tags         transactions
// @Produce      json
// @Param        transactionID  path      int true "transaction ID"
// @Success      200            {object}  domain.Transaction
// @Failure      400            {object}  response.Err
// @Failure      401            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Security     BearerAuth
// @Router       /transactions/{transactionID} [get]
func (h *TransactionHandler) HandleGetTransaction(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	transactionID, err := strconv.ParseUint(ctx.Param("transactionID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid transaction ID")))

		return
	}

	transaction, err := h.svc.GetTransaction(ctx.Request.Context(), uint(transactionID), user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("transaction", "ID", transactionID))
		case errors.Is(err, service.ErrTransactionAccessDenied):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleGetTransaction -> h.svc.GetTransaction -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, transaction)
}

// HandleListMyTransactions godoc
// @Summary      List the authenticated user's transactions
// @Tags         transactions
// @Produce      json
// @Success      200  {array}   domain.Transaction
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     BearerAuth
// @Router       /transactions [get]
func (h *TransactionHandler) HandleListMyTransactions(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	transactions, err := h.svc.ListMyTransactions(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyTransactions -> h.svc.ListMyTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, transactions)
}

// HandleListEventTransactions godoc
// @Summary      List transactions of an event (organizer only)
// @Tags         transactions
// @Produce      json
// @Param        eventID  path      int true "event ID"
// @Success      200      {array}   domain.Transaction
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Security     BearerAuth
// @Router       /events/{eventID}/transactions [get]
func (h *TransactionHandler) HandleListEventTransactions(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid event ID")))

		return
	}

	transactions, err := h.svc.ListEventTransactions(ctx.Request.Context(), uint(eventID), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotEventOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleListEventTransactions -> h.svc.ListEventTransactions -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, transactions)
}

// HandleSubmitPaymentProof godoc
// @Summary      Upload the payment proof for a transaction
// @Tags         transactions
// @Accept       multipart/form-data
// @Produce      json
// @Param        transactionID  path      int  true "transaction ID"
// @Param        proof          formData  file true "payment proof image"
// @Success      200            {object}  domain.Transaction
// @Failure      400            {object}  response.Err
// @Failure      401            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      422            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Security     BearerAuth
// @Router       /transactions/{transactionID}/proof [post]
func (h *TransactionHandler) HandleSubmitPaymentProof(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	transactionID, err := strconv.ParseUint(ctx.Param("transactionID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid transaction ID")))

		return
	}

	fileHeader, err := ctx.FormFile("proof")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("proof file is required")))

		return
	}

	if fileHeader.Size > maxProofSizeBytes {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("proof file exceeds the 5MB limit")))

		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		err = fmt.Errorf("v1.HandleSubmitPaymentProof -> fileHeader.Open -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}
	defer file.Close()

	transaction, err := h.svc.SubmitPaymentProof(ctx.Request.Context(), uint(transactionID), user.ID, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("transaction", "ID", transactionID))
		case errors.Is(err, service.ErrTransactionAccessDenied):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrInvalidTransactionStatus):
			response.RenderErr(ctx, response.ErrUnprocessable(err))
		default:
			err = fmt.Errorf("v1.HandleSubmitPaymentProof -> h.svc.SubmitPaymentProof -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, transaction)
}

// HandleConfirmTransaction godoc
// @Summary      Confirm a paid transaction (organizer only)
// @Tags         transactions
// @Produce      json
// @Param        transactionID  path      int true "transaction ID"
// @Success      200            {object}  domain.Transaction
// @Failure      400            {object}  response.Err
// @Failure      401            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      422            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Security     BearerAuth
// @Router       /transactions/{transactionID}/confirm [post]
func (h *TransactionHandler) HandleConfirmTransaction(ctx *gin.Context) {
	h.handleDecision(ctx, h.svc.Confirm)
}

// HandleRejectTransaction godoc
// @Summary      Reject a paid transaction (organizer only)
// @Tags         transactions
// @Produce      json
// @Param        transactionID  path      int true "transaction ID"
// @Success      200            {object}  domain.Transaction
// @Failure      400            {object}  response.Err
// @Failure      401            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      422            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Security     BearerAuth
// @Router       /transactions/{transactionID}/reject [post]
func (h *TransactionHandler) HandleRejectTransaction(ctx *gin.Context) {
	h.handleDecision(ctx, h.svc.Reject)
}

func (h *TransactionHandler) handleDecision(ctx *gin.Context, decide func(ctx context.Context, id, organizerID uint) (domain.Transaction, error)) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	transactionID, err := strconv.ParseUint(ctx.Param("transactionID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid transaction ID")))

		return
	}

	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), 30*time.Second)
	defer cancel()

	transaction, err := decide(requestCtx, uint(transactionID), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("transaction", "ID", transactionID))
		case errors.Is(err, service.ErrNotEventOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrInvalidTransactionStatus):
			response.RenderErr(ctx, response.ErrUnprocessable(err))
		default:
			err = fmt.Errorf("v1.handleDecision -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, transaction)
}
