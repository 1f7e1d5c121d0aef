package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"hostel/internal/service"
)

// RoomHandler handles room endpoints.
type RoomHandler struct {
	roomService service.RoomService
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(roomService service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// CreateRoomRequest represents a new room.
type CreateRoomRequest struct {
	RoomNumber string           `json:"room_number"`
	Floor      int              `json:"floor"`
	Capacity   int              `json:"capacity"`
	Rent       *decimal.Decimal `json:"rent" swaggertype:"string"`
}

// UpdateRoomRequest holds optional room changes.
type UpdateRoomRequest struct {
	RoomNumber *string          `json:"room_number"`
	Floor      *int             `json:"floor"`
	Capacity   *int             `json:"capacity"`
	Rent       *decimal.Decimal `json:"rent" swaggertype:"string"`
}

// AssignRoomRequest names the user to place, by id or CNIC.
type AssignRoomRequest struct {
	User string `json:"user" validate:"required"`
}

// AssignByNumberRequest names the user to place by id.
type AssignByNumberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// ToggleOccupantRequest names the student to add or remove.
type ToggleOccupantRequest struct {
	CNIC string `json:"cnic" validate:"required"`
}

// Create godoc
// @Summary Create a room
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRoomRequest true "Room"
// @Success 201 {object} Response{data=model.Room}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /room [post]
func (h *RoomHandler) Create(c echo.Context) error {
	var req CreateRoomRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	room, err := h.roomService.Create(c.Request().Context(), service.CreateRoomInput{
		RoomNumber: req.RoomNumber,
		Floor:      req.Floor,
		Capacity:   req.Capacity,
		Rent:       req.Rent,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Room created successfully", room)
}

// List godoc
// @Summary List rooms
// @Tags rooms
// @Produce json
// @Success 200 {object} Response{data=[]model.Room}
// @Router /room [get]
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.roomService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "All rooms fetched successfully", rooms)
}

// Get godoc
// @Summary Get a room
// @Tags rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} Response{data=model.Room}
// @Failure 404 {object} errors.ErrorResponse
// @Router /room/{id} [get]
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	room, err := h.roomService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Room fetched successfully", room)
}

// GetByNumber godoc
// @Summary Get rooms by number
// @Description A number can exist on several floors.
// @Tags rooms
// @Produce json
// @Param roomNumber path string true "Room number"
// @Success 200 {object} Response{data=[]model.Room}
// @Failure 404 {object} errors.ErrorResponse
// @Router /room/number/{roomNumber} [get]
func (h *RoomHandler) GetByNumber(c echo.Context) error {
	rooms, err := h.roomService.GetByNumber(c.Request().Context(), c.Param("roomNumber"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Room fetched successfully", rooms)
}

// Occupants godoc
// @Summary List room occupants
// @Tags rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} Response{data=[]model.User}
// @Failure 404 {object} errors.ErrorResponse
// @Router /room/{id}/occupants [get]
func (h *RoomHandler) Occupants(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	users, err := h.roomService.Occupants(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Occupants fetched successfully", users)
}

// Update godoc
// @Summary Update a room
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param request body UpdateRoomRequest true "Changes"
// @Success 200 {object} Response{data=model.Room}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /room/{id} [patch]
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req UpdateRoomRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	room, err := h.roomService.Update(c.Request().Context(), id, service.UpdateRoomInput{
		RoomNumber: req.RoomNumber,
		Floor:      req.Floor,
		Capacity:   req.Capacity,
		Rent:       req.Rent,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Room updated successfully", room)
}

// Delete godoc
// @Summary Delete a room
// @Description Occupants are left without a room.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} Response{data=model.Room}
// @Failure 404 {object} errors.ErrorResponse
// @Router /room/{id} [delete]
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	room, err := h.roomService.Delete(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Room deleted successfully", room)
}

// Assign godoc
// @Summary Assign a user to a room
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param request body AssignRoomRequest true "User ID or CNIC"
// @Success 200 {object} Response{data=model.Room}
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /room/{id}/assign [patch]
func (h *RoomHandler) Assign(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req AssignRoomRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	room, err := h.roomService.Assign(c.Request().Context(), id, req.User)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Room assigned successfully", room)
}

// AssignByNumber godoc
// @Summary Assign a user to a room by number
// @Description When the number exists on several floors the lowest floor is used.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param roomNumber path string true "Room number"
// @Param request body AssignByNumberRequest true "User ID"
// @Success 200 {object} Response{data=model.Room}
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /room/number/{roomNumber}/assign [patch]
func (h *RoomHandler) AssignByNumber(c echo.Context) error {
	var req AssignByNumberRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	userID, err := parseUUID(req.UserID, "user_id")
	if err != nil {
		return err
	}

	room, err := h.roomService.AssignByNumber(c.Request().Context(), c.Param("roomNumber"), userID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Room assigned successfully", room)
}

// Toggle godoc
// @Summary Add or remove an occupant
// @Description Removes the student when they live in the room, otherwise adds them.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param request body ToggleOccupantRequest true "Student CNIC"
// @Success 200 {object} Response{data=model.Room}
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /room/{id}/occupants [patch]
func (h *RoomHandler) Toggle(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req ToggleOccupantRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	room, err := h.roomService.Toggle(c.Request().Context(), id, req.CNIC)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Occupants updated successfully", room)
}
