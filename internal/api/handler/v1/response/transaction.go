package response

import (
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
)

type CouponPreviewResponse struct {
	Valid    bool   `json:"valid"`
	Reason   string `json:"reason,omitempty"`
	Discount int    `json:"discount"`
	Payable  int    `json:"payable"`
}

type PointBalanceResponse struct {
	Balance int `json:"balance"`
}

type PointHistoryResponse struct {
	Records  []domain.PointRecord `json:"records"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}
