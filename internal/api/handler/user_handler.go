package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
	"github.com/wfa22/PrivacyGuard/internal/core/ports"
)

type UserHandler struct {
	accounts ports.AccountService
}

func NewUserHandler(accounts ports.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// List returns all accounts. Admin only.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listAccountsResponse
// @Failure      403  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	accounts, err := h.accounts.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listAccountsResponse{Accounts: accounts, Total: len(accounts)})
}

// Get returns a single account. Callers may read themselves; everything else
// is admin only.
//
// @Summary      Get an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  accountResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	caller, err := ctxAccount(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if caller.Role != domain.RoleAdmin && caller.ID != id {
		return domain.ErrForbidden
	}

	account, err := h.accounts.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Account: account})
}

// ChangeRole sets an account's role and revokes its sessions. Admin only;
// self-demotion away from admin is refused.
//
// @Summary      Change an account's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Account id"
// @Param        body  body      changeRoleRequest  true  "New role"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/{id}/role [patch]
func (h *UserHandler) ChangeRole(c echo.Context) error {
	var req changeRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	caller, err := ctxAccount(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.ChangeRole(c.Request().Context(), c.Param("id"), req.Role, caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Account: account})
}

// Delete removes an account and its sessions. Admin only; self-deletion is
// refused.
//
// @Summary      Delete an account
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "Account id"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	caller, err := ctxAccount(c)
	if err != nil {
		return err
	}

	if err := h.accounts.Delete(c.Request().Context(), c.Param("id"), caller.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
