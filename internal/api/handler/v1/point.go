package v1

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/api/handler/v1/response"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100
)

type PointService interface {
	GetBalance(ctx context.Context, userID uint) (int, error)
	GetHistory(ctx context.Context, userID uint, page, pageSize int) ([]domain.PointRecord, int64, error)
}

type PointHandler struct {
	svc  PointService
	uSvc UserService
}

func NewPointHandler(svc PointService, uSvc UserService) *PointHandler {
	return &PointHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleGetBalance godoc
// @Summary      Get the authenticated user's point balance
// @Tags         points
// @Produce      json
// @Success      200  {object}  response.PointBalanceResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     BearerAuth
// @Router       /points/balance [get]
func (h *PointHandler) HandleGetBalance(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	balance, err := h.svc.GetBalance(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetBalance -> h.svc.GetBalance -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.PointBalanceResponse{Balance: balance})
}

// HandleGetHistory godoc
// @Summary      Get the authenticated user's point ledger
// @Tags         points
// @Produce      json
// @Param        page      query     int false "page number, starting at 1"
// @Param        pageSize  query     int false "page size, max 100"
// @Success      200       {object}  response.PointHistoryResponse
// @Failure      401       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Security     BearerAuth
// @Router       /points/history [get]
func (h *PointHandler) HandleGetHistory(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(ctx.DefaultQuery("pageSize", strconv.Itoa(defaultHistoryPageSize)))
	if err != nil || pageSize < 1 || pageSize > maxHistoryPageSize {
		pageSize = defaultHistoryPageSize
	}

	records, total, err := h.svc.GetHistory(ctx.Request.Context(), user.ID, page, pageSize)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetHistory -> h.svc.GetHistory -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.PointHistoryResponse{
		Records:  records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
