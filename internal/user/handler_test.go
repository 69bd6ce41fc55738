package user_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrattendance/internal/credential"
	"qrattendance/internal/user"
)

type fakeUserService struct {
	AddFn              func(ctx context.Context, req user.CreateUserRequest) (user.CreateUserResponse, error)
	ListFn             func(ctx context.Context) ([]user.UserResponse, error)
	DeleteFn           func(ctx context.Context, id string) error
	ChangePasswordFn   func(ctx context.Context, id, newPassword string) error
	LoginFn            func(ctx context.Context, username, password string) (user.LoginResponse, error)
	GetByUsernameFn    func(ctx context.Context, username string) (user.UserResponse, error)
	GetByIDFn          func(ctx context.Context, id string) (user.UserResponse, error)
	MigratePasswordsFn func(ctx context.Context) (int, error)
}

func (f *fakeUserService) Add(ctx context.Context, req user.CreateUserRequest) (user.CreateUserResponse, error) {
	return f.AddFn(ctx, req)
}
func (f *fakeUserService) List(ctx context.Context) ([]user.UserResponse, error) { return f.ListFn(ctx) }
func (f *fakeUserService) Delete(ctx context.Context, id string) error        { return f.DeleteFn(ctx, id) }
func (f *fakeUserService) ChangePassword(ctx context.Context, id, pw string) error {
	return f.ChangePasswordFn(ctx, id, pw)
}
func (f *fakeUserService) Login(ctx context.Context, username, password string) (user.LoginResponse, error) {
	return f.LoginFn(ctx, username, password)
}
func (f *fakeUserService) GetByUsername(ctx context.Context, username string) (user.UserResponse, error) {
	return f.GetByUsernameFn(ctx, username)
}
func (f *fakeUserService) GetByID(ctx context.Context, id string) (user.UserResponse, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeUserService) MigratePasswords(ctx context.Context) (int, error) {
	return f.MigratePasswordsFn(ctx)
}

func newRouter(svc user.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	user.RegisterRoutes(r.Group("/api"), user.NewHandler(svc))
	return r
}

func TestUserHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeUserService{
			LoginFn: func(ctx context.Context, username, password string) (user.LoginResponse, error) {
				assert.Equal(t, "alice", username)
				assert.Equal(t, "pw", password)
				return user.LoginResponse{ID: "1", Username: "alice", Role: user.RoleEmployee}, nil
			},
		}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"alice","password":"pw"}`))
		req.Header.Set("Content-Type", "application/json")

		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"1","username":"alice","role":"EMPLOYEE"}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &fakeUserService{
			LoginFn: func(ctx context.Context, username, password string) (user.LoginResponse, error) {
				return user.LoginResponse{}, user.ErrInvalidCredentials
			},
		}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"x","password":"y"}`))

		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid username or password")
	})
}

func TestUserHandler_Add(t *testing.T) {
	svc := &fakeUserService{
		AddFn: func(ctx context.Context, req user.CreateUserRequest) (user.CreateUserResponse, error) {
			if req.Username == "taken" {
				return user.CreateUserResponse{}, user.ErrUsernameTaken
			}
			if len(req.Password) > 72 {
				return user.CreateUserResponse{}, user.ErrPasswordTooLong
			}
			return user.CreateUserResponse{ID: "9", Username: req.Username, Role: user.Role(req.Role), Message: "User created successfully"}, nil
		},
	}
	r := newRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/users/add",
		strings.NewReader(`{"username":"carol","password":"pw","role":"ADMIN"}`)))
	assert.Equal(t, http.StatusCreated, w.Code)

	var body user.CreateUserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "carol", body.Username)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/users/add",
		strings.NewReader(`{"username":"taken","password":"pw","role":"ADMIN"}`)))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Username already exists")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/users/add",
		strings.NewReader(`{"username":"dave","password":"`+strings.Repeat("a", 73)+`","role":"EMPLOYEE"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Password must be at most 72 bytes")
	assert.Contains(t, w.Body.String(), `"code":"INVALID_INPUT"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/users/add", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_ChangePasswordAndDelete(t *testing.T) {
	var changedID, deletedID string
	svc := &fakeUserService{
		ChangePasswordFn: func(ctx context.Context, id, pw string) error {
			changedID = id
			return nil
		},
		DeleteFn: func(ctx context.Context, id string) error {
			if id == "missing" {
				return user.ErrUserNotFound
			}
			deletedID = id
			return nil
		},
	}
	r := newRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/admin/users/42/password", strings.NewReader(`{"password":"n"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", changedID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/admin/users/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", deletedID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/admin/users/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_Lookups(t *testing.T) {
	svc := &fakeUserService{
		GetByUsernameFn: func(ctx context.Context, username string) (user.UserResponse, error) {
			return user.UserResponse{ID: "1", Username: username, Role: user.RoleEmployee}, nil
		},
		GetByIDFn: func(ctx context.Context, id string) (user.UserResponse, error) {
			return user.UserResponse{}, errors.New("connection refused")
		},
	}
	r := newRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/by-username?username=alice", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/1", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestUserHandler_MigratePasswords(t *testing.T) {
	svc := &fakeUserService{
		MigratePasswordsFn: func(ctx context.Context) (int, error) { return 3, nil },
	}
	w := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/users/migrate-passwords", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"migrated":3}`, w.Body.String())
}

func TestUserHandler_MigratePasswords_PartialRun(t *testing.T) {
	svc := &fakeUserService{
		MigratePasswordsFn: func(ctx context.Context) (int, error) {
			return 2, &credential.PartialError{Failed: []error{errors.New("hash password for aaa: too long")}}
		},
	}
	w := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/users/migrate-passwords", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"migrated":2,"skipped":1}`, w.Body.String())
}
