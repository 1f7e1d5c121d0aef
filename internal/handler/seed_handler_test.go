package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hostel/internal/errors"
	"hostel/internal/model"
	"hostel/internal/seed"
	"hostel/internal/service"
)

func TestSeedHandler_Seed(t *testing.T) {
	rooms := new(MockRoomService)
	rooms.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateRoomInput) bool { return in.RoomNumber == "101" })).
		Return(&model.Room{RoomNumber: "101"}, nil)
	rooms.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateRoomInput) bool { return in.RoomNumber == "102" })).
		Return(nil, errors.ErrRoomExists)
	users := new(MockUserService)
	users.On("CreateAdmin", mock.Anything, service.AdminInput{
		Username: "warden", Email: "warden@hostel.test", Password: "admin-pass", CNIC: "ADMIN-1",
	}).Return(&model.User{Role: model.RoleAdmin}, nil)

	h := NewSeedHandler(rooms, users)
	e := newEcho()
	e.POST("/room/seed", h.Seed)

	rec := serve(e, jsonRequest(http.MethodPost, "/room/seed", `{
		"admin": {"username": "warden", "email": "warden@hostel.test", "password": "admin-pass", "cnic": "ADMIN-1"},
		"rooms": [{"room_number": "101", "floor": 1, "capacity": 2}, {"room_number": "102", "floor": 1, "capacity": 2}]
	}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var res seed.Result
	decodeEnvelope(t, rec, &res)
	assert.Equal(t, seed.Result{RoomsCreated: 1, RoomsSkipped: 1, AdminCreated: true}, res)
	rooms.AssertExpectations(t)
	users.AssertExpectations(t)
}
