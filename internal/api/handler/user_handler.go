package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/identity-systems/user-api/internal/api/middleware"
	"github.com/identity-systems/user-api/internal/core/ports"
)

const (
	defaultPage = 0
	defaultSize = 10
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register creates a self-service account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  Response
// @Failure      400   {object}  Response
// @Failure      409   {object}  Response
// @Router       /users/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Register(c.Request().Context(), req.Name, req.Password)
	if err != nil {
		return err
	}
	return OK(c, http.StatusCreated, user)
}

// RegisterAdmin creates an account with the ADMIN role, gated by the
// shared admin registration code.
//
// @Summary      Register a new admin
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      adminRegisterRequest  true  "Admin registration details"
// @Success      201   {object}  Response
// @Failure      400   {object}  Response
// @Failure      403   {object}  Response
// @Failure      409   {object}  Response
// @Router       /users/register/admin [post]
func (h *UserHandler) RegisterAdmin(c echo.Context) error {
	var req adminRegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.RegisterAdmin(c.Request().Context(), req.Name, req.Password, req.AdminCode)
	if err != nil {
		return err
	}
	return OK(c, http.StatusCreated, user)
}

// Login verifies credentials and returns a bearer token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Response
// @Failure      401   {object}  Response
// @Failure      404   {object}  Response
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.userService.Login(c.Request().Context(), req.Name, req.Password)
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, loginResponse{Token: result.Token, User: result.User})
}

// RefreshToken issues a fresh token for the authenticated caller.
//
// @Summary      Refresh the bearer token
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Failure      401  {object}  Response
// @Router       /users/refresh-token [post]
func (h *UserHandler) RefreshToken(c echo.Context) error {
	result, err := h.userService.RefreshToken(c.Request().Context(), middleware.Subject(c))
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, loginResponse{Token: result.Token, User: result.User})
}

// Me returns the authenticated caller's own record.
//
// @Summary      Get the current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Failure      401  {object}  Response
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.userService.CurrentUser(c.Request().Context(), middleware.Subject(c))
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, user)
}

// ChangePassword replaces the target's password after verifying the
// current one. Knowing the current password is the only gate; admins get
// no shortcut here.
//
// @Summary      Change a user's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User ID"
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  Response
// @Failure      401   {object}  Response
// @Failure      404   {object}  Response
// @Router       /users/{id}/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.ChangePassword(c.Request().Context(), c.Param("id"), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return OK(c, http.StatusOK, nil)
}

// Create is the direct-create path with optional age metadata.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userRequest  true  "User details"
// @Success      201   {object}  Response
// @Failure      400   {object}  Response
// @Failure      409   {object}  Response
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password is required")
	}

	user, err := h.userService.CreateUser(c.Request().Context(), req.Name, req.Password, req.Age)
	if err != nil {
		return err
	}
	return OK(c, http.StatusCreated, user)
}

// Get returns a single record, readable by its owner or an admin.
//
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  Response
// @Failure      403  {object}  Response
// @Failure      404  {object}  Response
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), middleware.Subject(c), c.Param("id"))
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, user)
}

// Update changes name, age and optionally the password of a record.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "User ID"
// @Param        body  body      userRequest  true  "User details"
// @Success      200   {object}  Response
// @Failure      403   {object}  Response
// @Failure      404   {object}  Response
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), middleware.Subject(c), c.Param("id"), ports.UpdateUserInput{
		Name:     req.Name,
		Age:      req.Age,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, user)
}

// Delete removes a record.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  Response
// @Failure      403  {object}  Response
// @Failure      404  {object}  Response
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.userService.DeleteUser(c.Request().Context(), middleware.Subject(c), c.Param("id")); err != nil {
		return err
	}
	return OK(c, http.StatusOK, nil)
}

// List returns every user record. Admin only.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Failure      403  {object}  Response
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context(), middleware.Subject(c))
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, users)
}

// ListPaged returns one page of user records. Admin only.
//
// @Summary      List users by page
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Zero-based page index"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  Response
// @Failure      403   {object}  Response
// @Router       /users/page [get]
func (h *UserHandler) ListPaged(c echo.Context) error {
	page, err := queryInt(c, "page", defaultPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page must be a non-negative integer")
	}
	size, err := queryInt(c, "size", defaultSize)
	if err != nil || size == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "size must be a positive integer")
	}

	users, err := h.userService.ListUsersPaged(c.Request().Context(), middleware.Subject(c), page, size)
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, users)
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.ErrBadRequest
	}
	return n, nil
}
