package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/api/handler/v1/response"
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/job"
)

type AdminHandler struct {
	opsAPIKey string
	sweeper   *job.Sweeper
}

func NewAdminHandler(opsAPIKey string, sweeper *job.Sweeper) *AdminHandler {
	return &AdminHandler{
		opsAPIKey: opsAPIKey,
		sweeper:   sweeper,
	}
}

// HandleReconcile godoc
// @Summary      Run one reconciliation pass immediately
// @Tags         admin
// @Produce      json
// @Param        X-Ops-Api-Key  header    string true "operations API key"
// @Success      200            {object}  job.SweepResult
// @Failure      401            {object}  response.Err
// @Router       /admin/reconcile [post]
func (h *AdminHandler) HandleReconcile(ctx *gin.Context) {
	if h.opsAPIKey == "" || ctx.GetHeader("X-Ops-Api-Key") != h.opsAPIKey {
		response.RenderErr(ctx, response.ErrUnauthorized("invalid operations API key"))

		return
	}

	result := h.sweeper.RunOnce(ctx.Request.Context())

	ctx.JSON(http.StatusOK, result)
}
