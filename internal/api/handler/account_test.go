package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facegate/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/service"
)

// MockAccountService is a mock implementation of AccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, req service.RegisterRequest) (*service.RegisterResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegisterResult), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, payload string) (*service.LoginResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAccountService) Logout(ctx context.Context, userID, name string) error {
	args := m.Called(ctx, userID, name)
	return args.Error(0)
}

func (m *MockAccountService) AdminOverview(ctx context.Context) (*domain.AdminOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminOverview), args.Error(1)
}

func createAccountApp(svc AccountService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(testLogger())})
	h := NewAccountHandler(svc, testLogger())
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Post("/logout", h.Logout)
	app.Get("/admin/data", h.AdminData)
	return app
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func errorCode(body map[string]any) string {
	detail, _ := body["error"].(map[string]any)
	code, _ := detail["code"].(string)
	return code
}

func TestAccountHandler_Register(t *testing.T) {
	t.Run("registers user", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Register", mock.Anything, mock.MatchedBy(func(req service.RegisterRequest) bool {
			return req.User.Name == "Maria" &&
				req.User.Department == "Ops" &&
				len(req.Images) == 3
		})).Return(&service.RegisterResult{
			User:            &domain.User{ID: "ab12cd34", Name: "Maria", Email: "maria@example.com"},
			TrainingPhotos:  3,
			ValidPhotos:     2,
			TrainingQuality: 2.0 / 3.0,
		}, nil)

		app := createAccountApp(svc)
		resp, err := app.Test(jsonRequest(t, "POST", "/register", RegisterRequest{
			Name:       "Maria",
			Email:      "maria@example.com",
			Department: "Ops",
			Images:     []string{"a", "b", "c"},
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var body RegisterResponse
		raw, _ := io.ReadAll(resp.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.True(t, body.Success)
		assert.Equal(t, "ab12cd34", body.UserID)
		assert.Equal(t, 3, body.TrainingPhotos)
		assert.Equal(t, 2, body.ValidPhotos)
		assert.InDelta(t, 0.667, body.TrainingQuality, 0.001)
		svc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := new(MockAccountService)
		app := createAccountApp(svc)

		req := httptest.NewRequest("POST", "/register", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", errorCode(decodeBody(t, resp)))
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("service errors keep their status", func(t *testing.T) {
		tests := []struct {
			err        *domain.AppError
			wantStatus int
		}{
			{domain.ErrNoImages, 400},
			{domain.ErrEmailExists, 409},
			{domain.ErrFaceBiometricExists.WithMessage("This face is already registered as %s", "Ana"), 409},
			{domain.ErrTooFewImages, 422},
			{domain.ErrInsufficientSamples, 422},
			{domain.ErrServiceUnavailable, 503},
		}

		for _, tt := range tests {
			t.Run(tt.err.Code, func(t *testing.T) {
				svc := new(MockAccountService)
				svc.On("Register", mock.Anything, mock.Anything).Return(nil, tt.err)

				app := createAccountApp(svc)
				resp, err := app.Test(jsonRequest(t, "POST", "/register", RegisterRequest{Name: "X"}))
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, resp.StatusCode)

				body := decodeBody(t, resp)
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.err.Code, errorCode(body))
			})
		}
	})
}

func TestAccountHandler_Login(t *testing.T) {
	t.Run("recognized", func(t *testing.T) {
		last := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		svc := new(MockAccountService)
		svc.On("Login", mock.Anything, "data:image/png;base64,AAAA").Return(&service.LoginResult{
			User:  &domain.User{ID: "ab12cd34", Name: "Maria", LastLoginAt: &last, LoginCount: 4},
			Score: 0.82,
		}, nil)

		app := createAccountApp(svc)
		resp, err := app.Test(jsonRequest(t, "POST", "/login", LoginRequest{Image: "data:image/png;base64,AAAA"}))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.InDelta(t, 0.82, body["score"], 1e-9)
		user := body["user"].(map[string]any)
		assert.Equal(t, "ab12cd34", user["user_id"])
		assert.Equal(t, float64(4), user["login_count"])
		assert.NotEmpty(t, user["last_login"])
	})

	t.Run("missing image", func(t *testing.T) {
		svc := new(MockAccountService)
		app := createAccountApp(svc)

		resp, err := app.Test(jsonRequest(t, "POST", "/login", LoginRequest{}))
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(decodeBody(t, resp)))
		svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("not recognized", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Login", mock.Anything, "img").Return(nil, domain.ErrFaceNotRecognized)

		app := createAccountApp(svc)
		resp, err := app.Test(jsonRequest(t, "POST", "/login", LoginRequest{Image: "img"}))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "FACE_NOT_RECOGNIZED", errorCode(decodeBody(t, resp)))
	})

	t.Run("profile without user record", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Login", mock.Anything, "img").Return(nil, domain.ErrUserNotFound)

		app := createAccountApp(svc)
		resp, err := app.Test(jsonRequest(t, "POST", "/login", LoginRequest{Image: "img"}))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestAccountHandler_Logout(t *testing.T) {
	t.Run("by user id", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Logout", mock.Anything, "ab12cd34", "Maria").Return(nil)

		app := createAccountApp(svc)
		resp, err := app.Test(jsonRequest(t, "POST", "/logout", LogoutRequest{UserID: "ab12cd34", Name: "Maria"}))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Contains(t, body["message"], "Maria")
		svc.AssertExpectations(t)
	})

	t.Run("empty request", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("Logout", mock.Anything, "", "").Return(domain.ErrBadRequest.WithMessage("user_id or name is required"))

		app := createAccountApp(svc)
		resp, err := app.Test(jsonRequest(t, "POST", "/logout", LogoutRequest{}))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestAccountHandler_AdminData(t *testing.T) {
	t.Run("returns overview", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("AdminOverview", mock.Anything).Return(&domain.AdminOverview{
			Users: []domain.UserOverview{{
				User:          domain.User{ID: "ab12cd34", Name: "Maria"},
				TrainingStats: domain.TrainingStats{Photos: 3, Quality: 1, Type: domain.TrainingMultiPhoto},
			}},
			Logs: []domain.AccessEvent{{ID: "e1", UserID: "ab12cd34", Name: "Maria", Action: domain.ActionIn}},
			Statistics: domain.Statistics{
				TotalUsers:       1,
				MultiPhotoUsers:  1,
				TotalLogins:      1,
				AvgPhotosPerUser: 3,
			},
		}, nil)

		app := createAccountApp(svc)
		resp, err := app.Test(httptest.NewRequest("GET", "/admin/data", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		users := body["users"].([]any)
		require.Len(t, users, 1)
		stats := users[0].(map[string]any)["training_stats"].(map[string]any)
		assert.Equal(t, "multi-photo", stats["type"])
		assert.Len(t, body["logs"], 1)
		assert.Equal(t, float64(1), body["statistics"].(map[string]any)["total_users"])
	})

	t.Run("store failure", func(t *testing.T) {
		svc := new(MockAccountService)
		svc.On("AdminOverview", mock.Anything).Return(nil, domain.ErrInternal)

		app := createAccountApp(svc)
		resp, err := app.Test(httptest.NewRequest("GET", "/admin/data", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})
}
