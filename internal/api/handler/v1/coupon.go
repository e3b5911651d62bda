package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/api/handler/v1/request"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/api/handler/v1/response"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/service"
)

type CouponService interface {
	CreateCoupon(ctx context.Context, coupon domain.Coupon, creatorID uint) (domain.Coupon, error)
	Validate(ctx context.Context, code string, userID, eventID uint) (domain.CouponValidation, error)
}

type CouponHandler struct {
	svc  CouponService
	uSvc UserService
}

func NewCouponHandler(svc CouponService, uSvc UserService) *CouponHandler {
	return &CouponHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateCoupon godoc
// @Summary      Create a coupon (organizer only)
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateCouponRequest true "request body"
// @Success      201      {object}  domain.Coupon
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Security     BearerAuth
// @Router       /coupons [post]
func (h *CouponHandler) HandleCreateCoupon(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if user.Role != domain.RoleOrganizer {
		response.RenderErr(ctx, response.ErrPermissionDenied(errors.New("only organizers can create coupons")))

		return
	}

	var req request.CreateCouponRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	coupon, err := h.svc.CreateCoupon(ctx.Request.Context(), domain.Coupon{
		Code:          req.Code,
		DiscountType:  domain.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		MaxUses:       req.MaxUses,
		IsActive:      true,
		EventID:       req.EventID,
		ExpiresAt:     req.ExpiresAt,
	}, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponCodeExists):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrNotEventOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", *req.EventID))
		default:
			err = fmt.Errorf("v1.HandleCreateCoupon -> h.svc.CreateCoupon -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, coupon)
}

// HandlePreviewCoupon godoc
// @Summary      Preview the discount a coupon gives on an amount
// @Tags         coupons
// @Produce      json
// @Param        code     query     string true "coupon code"
// @Param        eventId  query     int    true "event ID"
// @Param        amount   query     int    true "gross amount"
// @Success      200      {object}  response.CouponPreviewResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Security     BearerAuth
// @Router       /coupons/preview [get]
func (h *CouponHandler) HandlePreviewCoupon(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	code := ctx.Query("code")
	if code == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("code is required")))

		return
	}

	eventID, err := strconv.ParseUint(ctx.Query("eventId"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid event ID")))

		return
	}

	amount, err := strconv.Atoi(ctx.Query("amount"))
	if err != nil || amount < 0 {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid amount")))

		return
	}

	validation, err := h.svc.Validate(ctx.Request.Context(), code, user.ID, uint(eventID))
	if err != nil {
		err = fmt.Errorf("v1.HandlePreviewCoupon -> h.svc.Validate -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	resp := response.CouponPreviewResponse{
		Valid:   validation.Valid,
		Payable: amount,
	}
	if validation.Valid {
		resp.Discount = service.CalculateDiscount(validation.Coupon, amount)
		resp.Payable = amount - resp.Discount
	} else {
		resp.Reason = string(validation.Reason)
	}

	ctx.JSON(http.StatusOK, resp)
}
