package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emsys/identity-service/internal/api/metrics"
	"github.com/emsys/identity-service/internal/core/domain"
	"github.com/emsys/identity-service/internal/core/ports"
)

// AuthHandler handles registration, login, and role assignment.
type AuthHandler struct {
	registration ports.RegistrationService
	auth         ports.AuthService
	roles        ports.RoleAssignmentService
}

func NewAuthHandler(
	registration ports.RegistrationService,
	auth ports.AuthService,
	roles ports.RoleAssignmentService,
) *AuthHandler {
	return &AuthHandler{registration: registration, auth: auth, roles: roles}
}

// Register creates a new account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.registration.Register(c.Request().Context(), ports.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	for _, role := range result.Roles {
		metrics.RegistrationsTotal.WithLabelValues(role).Inc()
	}

	return c.JSON(http.StatusCreated, registerResponse{
		ID:       result.ID,
		Username: result.Username,
		Email:    result.Email,
		Roles:    result.Roles,
		Message:  msgRegistered,
	})
}

// Login authenticates an account and returns a signed token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Token:    result.Token,
		Username: result.Username,
		Roles:    result.Roles,
		Message:  msgLoggedIn,
	})
}

// AssignRole grants a role to an account. Admin only; the Auth and RBAC
// middleware gate this route before the handler runs.
//
// @Summary      Assign a role to an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      assignRoleRequest  true  "Target account and role"
// @Success      200   {object}  assignRoleResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/assign-role [post]
func (h *AuthHandler) AssignRole(c echo.Context) error {
	var req assignRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.roles.AssignRole(c.Request().Context(), req.UserID, req.RoleName)
	if err != nil {
		metrics.RoleAssignmentsTotal.WithLabelValues(assignmentOutcome(err)).Inc()
		return err
	}
	metrics.RoleAssignmentsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, assignRoleResponse{
		Message: msgRoleAssigned,
		Roles:   result.Roles,
	})
}

func assignmentOutcome(err error) string {
	switch err {
	case domain.ErrRoleAlreadyAssigned:
		return "duplicate"
	case domain.ErrAccountNotFound, domain.ErrRoleNotFound:
		return "not_found"
	default:
		return "error"
	}
}
