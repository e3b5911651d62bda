package v1

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/api/handler/v1/response"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/api/middleware"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

// getUserFromContext loads the authenticated user stored by the JWT
// middleware.
func getUserFromContext(ctx *gin.Context, svc UserService) (domain.User, *response.Err) {
	value, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return domain.User{}, response.ErrUnauthorized("user not authenticated")
	}

	userID, ok := value.(uint)
	if !ok {
		return domain.User{}, response.ErrUnauthorized("invalid user context")
	}

	user, err := svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("svc.GetUser -> %w", err))
	}

	return user, nil
}
