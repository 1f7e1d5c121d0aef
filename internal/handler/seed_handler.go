package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hostel/internal/seed"
	"hostel/internal/service"
)

// SeedHandler handles seed data endpoints.
type SeedHandler struct {
	roomService service.RoomService
	userService service.UserService
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(roomService service.RoomService, userService service.UserService) *SeedHandler {
	return &SeedHandler{roomService: roomService, userService: userService}
}

// Seed godoc
// @Summary Seed rooms and an administrator
// @Description Existing or invalid entries are skipped.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body seed.Data true "Seed data"
// @Success 200 {object} Response{data=seed.Result}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /room/seed [post]
func (h *SeedHandler) Seed(c echo.Context) error {
	var data seed.Data
	if err := bind(c, &data); err != nil {
		return err
	}

	res, err := seed.Apply(c.Request().Context(), h.roomService, h.userService, &data)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Seed data applied", res)
}
