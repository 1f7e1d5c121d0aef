package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hostel/internal/errors"
	"hostel/internal/middleware"
	"hostel/internal/model"
	"hostel/internal/service"
)

func newUserServer(svc *MockUserService, p *middleware.Principal) *echo.Echo {
	h := NewUserHandler(svc, NewCookieHelper(false, time.Hour, 24*time.Hour))
	e := newEcho()
	e.POST("/users/register", h.Register)
	me := e.Group("/users", asUser(p))
	me.GET("/me", h.Me)
	me.DELETE("/me", h.DeleteSelf)
	me.POST("/change-password", h.ChangePassword)
	me.PATCH("/avatar", h.UpdateAvatar)
	me.PATCH("/:id/role", h.UpdateRole)
	me.PATCH("/:id/credentials", h.UpdateCredentials)
	me.DELETE("/cnic/:cnic", h.DeleteByCNIC)
	return e
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, avatar []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if avatar != nil {
		part, err := w.CreateFormFile("avatar", "me.png")
		require.NoError(t, err)
		_, err = part.Write(avatar)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func registerFields() map[string]string {
	return map[string]string{
		"username":       "ali",
		"email":          "ali@hostel.test",
		"password":       "secret-pass",
		"phone":          "0300",
		"full_name":      "Ali Khan",
		"cnic":           "35202-1",
		"room_number":    "101",
		"floor":          "2",
		"payment_amount": "10000",
		"payment_method": "cash",
		"payment_month":  "5",
		"payment_year":   "2024",
	}
}

func TestUserHandler_Register(t *testing.T) {
	svc := new(MockUserService)
	var uploaded string
	svc.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
		return in.Username == "ali" && in.CNIC == "35202-1" && in.Floor != nil && *in.Floor == 2 &&
			in.PaymentMonth == 5 && in.PaymentYear == 2024 && in.PaymentAmount == "10000"
	}), mock.AnythingOfType("*service.Avatar")).
		Run(func(args mock.Arguments) {
			avatar := args.Get(2).(*service.Avatar)
			content, _ := io.ReadAll(avatar.Content)
			uploaded = avatar.Filename + ":" + string(content)
		}).
		Return(&model.User{Username: "ali", CNIC: "35202-1"}, nil)
	e := newUserServer(svc, student())

	rec := serve(e, multipartRequest(t, http.MethodPost, "/users/register", registerFields(), []byte("png-bytes")))

	require.Equal(t, http.StatusCreated, rec.Code)
	var user model.User
	decodeEnvelope(t, rec, &user)
	assert.Equal(t, "35202-1", user.CNIC)
	assert.Equal(t, "me.png:png-bytes", uploaded)
	svc.AssertExpectations(t)
}

func TestUserHandler_RegisterWithoutAvatar(t *testing.T) {
	svc := new(MockUserService)
	svc.On("Register", mock.Anything, mock.Anything, (*service.Avatar)(nil)).Return(nil, errors.ErrAvatarRequired)
	e := newUserServer(svc, student())

	rec := serve(e, multipartRequest(t, http.MethodPost, "/users/register", registerFields(), nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "AVATAR_REQUIRED", decodeError(t, rec).Code)
}

func TestUserHandler_RegisterRejectsBadFloor(t *testing.T) {
	svc := new(MockUserService)
	e := newUserServer(svc, student())
	fields := registerFields()
	fields["floor"] = "ground"

	rec := serve(e, multipartRequest(t, http.MethodPost, "/users/register", fields, []byte("png")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserHandler_Me(t *testing.T) {
	p := student()
	svc := new(MockUserService)
	svc.On("Me", mock.Anything, p.ID).Return(&model.User{ID: p.ID, Username: "ali"}, nil)
	e := newUserServer(svc, p)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var user model.User
	decodeEnvelope(t, rec, &user)
	assert.Equal(t, p.ID, user.ID)
}

func TestUserHandler_ChangePassword(t *testing.T) {
	p := student()
	svc := new(MockUserService)
	svc.On("ChangePassword", mock.Anything, p.ID, "old-pass", "new-pass").Return(errors.ErrWrongPassword)
	e := newUserServer(svc, p)

	rec := serve(e, jsonRequest(http.MethodPost, "/users/change-password", `{"old_password":"old-pass","new_password":"new-pass"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_OLD_PASSWORD", decodeError(t, rec).Code)
}

func TestUserHandler_DeleteSelfClearsCookies(t *testing.T) {
	p := student()
	svc := new(MockUserService)
	svc.On("DeleteSelf", mock.Anything, p.ID).Return(nil)
	e := newUserServer(svc, p)

	rec := serve(e, httptest.NewRequest(http.MethodDelete, "/users/me", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	refresh := cookieByName(rec, middleware.RefreshTokenCookie)
	require.NotNil(t, refresh)
	assert.Less(t, refresh.MaxAge, 0)
	assert.Equal(t, http.SameSiteLaxMode, refresh.SameSite)
}

func TestUserHandler_UpdateRole(t *testing.T) {
	id := uuid.New()

	t.Run("role is normalized", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("UpdateRole", mock.Anything, id, model.RoleAdmin).Return(&model.User{ID: id, Role: model.RoleAdmin}, nil)
		e := newUserServer(svc, student())

		rec := serve(e, jsonRequest(http.MethodPatch, "/users/"+id.String()+"/role", `{"role":" Admin "}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unchanged role conflicts", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("UpdateRole", mock.Anything, id, model.RoleStudent).
			Return(nil, errors.ErrRoleUnchanged.Withf("user is already a student"))
		e := newUserServer(svc, student())

		rec := serve(e, jsonRequest(http.MethodPatch, "/users/"+id.String()+"/role", `{"role":"student"}`))

		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "ROLE_UNCHANGED", resp.Code)
		assert.Equal(t, "user is already a student", resp.Error)
	})

	t.Run("invalid id", func(t *testing.T) {
		e := newUserServer(new(MockUserService), student())

		rec := serve(e, jsonRequest(http.MethodPatch, "/users/not-a-uuid/role", `{"role":"admin"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_UUID", decodeError(t, rec).Code)
	})
}

func TestUserHandler_UpdateCredentials(t *testing.T) {
	id := uuid.New()
	floor := 3
	svc := new(MockUserService)
	svc.On("UpdateCredentials", mock.Anything, id, service.UpdateCredentialsInput{
		Email:      "new@hostel.test",
		RoomNumber: "201",
		Floor:      &floor,
	}).Return(nil, errors.ErrRoomFull)
	e := newUserServer(svc, student())

	rec := serve(e, jsonRequest(http.MethodPatch, "/users/"+id.String()+"/credentials",
		`{"email":"new@hostel.test","room_number":"201","floor":3}`))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ROOM_FULL", decodeError(t, rec).Code)
	svc.AssertExpectations(t)
}

func TestUserHandler_DeleteByCNIC(t *testing.T) {
	svc := new(MockUserService)
	svc.On("DeleteByCNIC", mock.Anything, "35202-1").Return(nil, errors.ErrUserNotFound)
	e := newUserServer(svc, student())

	rec := serve(e, httptest.NewRequest(http.MethodDelete, "/users/cnic/35202-1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "USER_NOT_FOUND", decodeError(t, rec).Code)
}
