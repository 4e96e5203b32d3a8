package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/service"
)

// AccountService interface for the service
type AccountService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*service.RegisterResult, error)
	Login(ctx context.Context, payload string) (*service.LoginResult, error)
	Logout(ctx context.Context, userID, name string) error
	AdminOverview(ctx context.Context) (*domain.AdminOverview, error)
}

// AccountHandler handles registration, login and logout
type AccountHandler struct {
	service AccountService
	logger  *slog.Logger
}

// NewAccountHandler creates a new AccountHandler instance
func NewAccountHandler(service AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRequest is the body of POST /register
type RegisterRequest struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	DateOfBirth      string   `json:"date_of_birth"`
	Gender           string   `json:"gender"`
	Address          string   `json:"address"`
	Department       string   `json:"department"`
	Position         string   `json:"position"`
	EmergencyContact string   `json:"emergency_contact"`
	EmergencyPhone   string   `json:"emergency_phone"`
	Images           []string `json:"images"`
}

// RegisterResponse response for register endpoint
type RegisterResponse struct {
	Success         bool    `json:"success"`
	Message         string  `json:"message"`
	UserID          string  `json:"user_id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	TrainingPhotos  int     `json:"training_photos"`
	ValidPhotos     int     `json:"valid_photos"`
	TrainingQuality float64 `json:"training_quality"`
}

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Image string `json:"image"`
}

// LoginResponse response for login endpoint
type LoginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    domain.User `json:"user"`
	Score   float64     `json:"score"`
}

// LogoutRequest is the body of POST /logout
type LogoutRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// MessageResponse is a bare success acknowledgement
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register POST /register - enroll a new user from several photos
func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	result, err := h.service.Register(c.UserContext(), service.RegisterRequest{
		User: domain.User{
			Name:             req.Name,
			Email:            req.Email,
			Phone:            req.Phone,
			DateOfBirth:      req.DateOfBirth,
			Gender:           req.Gender,
			Address:          req.Address,
			Department:       req.Department,
			Position:         req.Position,
			EmergencyContact: req.EmergencyContact,
			EmergencyPhone:   req.EmergencyPhone,
		},
		Images: req.Images,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(RegisterResponse{
		Success:         true,
		Message:         fmt.Sprintf("Registered %s with %d of %d photos", result.User.DisplayName(), result.ValidPhotos, result.TrainingPhotos),
		UserID:          result.User.ID,
		Name:            result.User.Name,
		Email:           result.User.Email,
		TrainingPhotos:  result.TrainingPhotos,
		ValidPhotos:     result.ValidPhotos,
		TrainingQuality: result.TrainingQuality,
	})
}

// Login POST /login - identify the face and check the user in
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if req.Image == "" {
		return domain.ErrValidationFailed.WithMessage("image is required")
	}

	result, err := h.service.Login(c.UserContext(), req.Image)
	if err != nil {
		return err
	}

	return c.JSON(LoginResponse{
		Success: true,
		Message: "Welcome, " + result.User.DisplayName(),
		User:    *result.User,
		Score:   result.Score,
	})
}

// Logout POST /logout - check the user out
func (h *AccountHandler) Logout(c *fiber.Ctx) error {
	var req LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if err := h.service.Logout(c.UserContext(), req.UserID, req.Name); err != nil {
		return err
	}

	name := req.Name
	if name == "" {
		name = req.UserID
	}
	return c.JSON(MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Goodbye, %s (%s)", name, time.Now().Format("15:04")),
	})
}

// AdminResponse response for the admin overview endpoint
type AdminResponse struct {
	Success bool `json:"success"`
	*domain.AdminOverview
}

// AdminData GET /admin/data - users, recent access log and statistics
func (h *AccountHandler) AdminData(c *fiber.Ctx) error {
	overview, err := h.service.AdminOverview(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(AdminResponse{Success: true, AdminOverview: overview})
}
