package handler

import "github.com/wfa22/PrivacyGuard/internal/core/domain"

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type listAccountsResponse struct {
	Accounts []*domain.Account `json:"accounts"`
	Total    int               `json:"total"`
}
