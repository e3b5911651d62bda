package response

import (
	"github.com/ghallymuhammad/eventhub-miniproject-sub001/internal/domain"
)

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}
