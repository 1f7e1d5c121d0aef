package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"hostel/internal/errors"
	"hostel/internal/middleware"
	"hostel/internal/model"
	"hostel/internal/service"
)

// UserHandler handles account and user administration endpoints.
type UserHandler struct {
	userService service.UserService
	cookies     *CookieHelper
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, cookies *CookieHelper) *UserHandler {
	return &UserHandler{userService: userService, cookies: cookies}
}

// RegisterRequest is the multipart form of a student registration.
// The avatar is sent as the "avatar" file part.
type RegisterRequest struct {
	Username      string `form:"username" json:"username"`
	Email         string `form:"email" json:"email"`
	Password      string `form:"password" json:"password"`
	Phone         string `form:"phone" json:"phone"`
	FullName      string `form:"full_name" json:"full_name"`
	CNIC          string `form:"cnic" json:"cnic"`
	RoomNumber    string `form:"room_number" json:"room_number"`
	Floor         string `form:"floor" json:"floor"`
	PaymentAmount string `form:"payment_amount" json:"payment_amount"`
	PaymentMethod string `form:"payment_method" json:"payment_method"`
	PaymentMonth  int    `form:"payment_month" json:"payment_month"`
	PaymentYear   int    `form:"payment_year" json:"payment_year"`
}

// ChangePasswordRequest represents a password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// UpdateAccountRequest represents a profile update.
type UpdateAccountRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// UpdateUsernameRequest represents a username change.
type UpdateUsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

// UpdateRoleRequest represents a role change.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// UpdateCredentialsRequest is an admin edit of a user's profile and room.
type UpdateCredentialsRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	FullName   string `json:"full_name"`
	CNIC       string `json:"cnic"`
	RoomNumber string `json:"room_number"`
	Floor      *int   `json:"floor"`
}

// Register godoc
// @Summary Register a student
// @Description Creates the account, moves the student into the room and records the first month's payment.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param username formData string true "Username"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param phone formData string true "Phone"
// @Param full_name formData string true "Full name"
// @Param cnic formData string true "CNIC"
// @Param room_number formData string true "Room number"
// @Param floor formData int false "Floor"
// @Param payment_amount formData string true "Amount paid"
// @Param payment_method formData string true "cash, card or online"
// @Param payment_month formData int true "Month"
// @Param payment_year formData int true "Year"
// @Param avatar formData file true "Avatar image"
// @Success 201 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	floor, err := optionalInt(req.Floor)
	if err != nil {
		return respondError(c, errors.ErrValidation.WithDetails("floor must be an integer"))
	}

	avatar, closeAvatar, err := formAvatar(c)
	if err != nil {
		return err
	}
	defer closeAvatar()

	user, err := h.userService.Register(c.Request().Context(), service.RegisterInput{
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		Phone:         req.Phone,
		FullName:      req.FullName,
		CNIC:          req.CNIC,
		RoomNumber:    req.RoomNumber,
		Floor:         floor,
		PaymentAmount: req.PaymentAmount,
		PaymentMethod: req.PaymentMethod,
		PaymentMonth:  req.PaymentMonth,
		PaymentYear:   req.PaymentYear,
	}, avatar)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusCreated, "User registered successfully", user)
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=model.User}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return respondError(c, errors.ErrUnauthenticated)
	}

	user, err := h.userService.Me(c.Request().Context(), p.ID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "User fetched successfully", user)
}

// ChangePassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Old and new password"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/change-password [post]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return respondError(c, errors.ErrUnauthenticated)
	}
	var req ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.userService.ChangePassword(c.Request().Context(), p.ID, req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Password changed successfully", nil)
}

// UpdateAccount godoc
// @Summary Update full name and email
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateAccountRequest true "Profile"
// @Success 200 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/account [patch]
func (h *UserHandler) UpdateAccount(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return respondError(c, errors.ErrUnauthenticated)
	}
	var req UpdateAccountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateAccount(c.Request().Context(), p.ID, req.FullName, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Account details updated successfully", user)
}

// UpdateUsername godoc
// @Summary Change username
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateUsernameRequest true "Username"
// @Success 200 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/username [patch]
func (h *UserHandler) UpdateUsername(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return respondError(c, errors.ErrUnauthenticated)
	}
	var req UpdateUsernameRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateUsername(c.Request().Context(), p.ID, req.Username)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Username updated successfully", user)
}

// UpdateAvatar godoc
// @Summary Replace avatar
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/avatar [patch]
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return respondError(c, errors.ErrUnauthenticated)
	}

	avatar, closeAvatar, err := formAvatar(c)
	if err != nil {
		return err
	}
	defer closeAvatar()

	user, err := h.userService.UpdateAvatar(c.Request().Context(), p.ID, avatar)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Avatar updated successfully", user)
}

// DeleteSelf godoc
// @Summary Delete own account
// @Description Frees the user's place in their room. Payment history is kept.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [delete]
func (h *UserHandler) DeleteSelf(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return respondError(c, errors.ErrUnauthenticated)
	}

	if err := h.userService.DeleteSelf(c.Request().Context(), p.ID); err != nil {
		return respondError(c, err)
	}
	h.cookies.ClearAuthCookies(c)
	return respond(c, http.StatusOK, "User deleted successfully", nil)
}

// List godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]model.User}
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Users fetched successfully", users)
}

// DeleteByCNIC godoc
// @Summary Delete a user by CNIC
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param cnic path string true "CNIC"
// @Success 200 {object} Response{data=model.User}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/cnic/{cnic} [delete]
func (h *UserHandler) DeleteByCNIC(c echo.Context) error {
	user, err := h.userService.DeleteByCNIC(c.Request().Context(), c.Param("cnic"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "User deleted successfully", user)
}

// UpdateRole godoc
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateRoleRequest true "student or admin"
// @Success 200 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req UpdateRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	role := model.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	user, err := h.userService.UpdateRole(c.Request().Context(), id, role)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Role is updated", user)
}

// UpdateCredentials godoc
// @Summary Edit a user's profile and room
// @Description Moving to another room frees the old place and takes one in the new room atomically.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateCredentialsRequest true "Profile"
// @Success 200 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id}/credentials [patch]
func (h *UserHandler) UpdateCredentials(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req UpdateCredentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateCredentials(c.Request().Context(), id, service.UpdateCredentialsInput{
		Username:   req.Username,
		Email:      req.Email,
		Phone:      req.Phone,
		FullName:   req.FullName,
		CNIC:       req.CNIC,
		RoomNumber: req.RoomNumber,
		Floor:      req.Floor,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "User updated successfully", user)
}

// formAvatar opens the "avatar" file part. A missing part yields a nil avatar
// so the service can report it.
func formAvatar(c echo.Context) (*service.Avatar, func(), error) {
	header, err := c.FormFile("avatar")
	if err != nil {
		return nil, func() {}, nil
	}
	var file multipart.File
	if file, err = header.Open(); err != nil {
		return nil, func() {}, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid avatar file",
			Code:  "INVALID_REQUEST",
		})
	}
	return &service.Avatar{Filename: header.Filename, Content: file}, func() { file.Close() }, nil
}

func optionalInt(v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
