package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// RegisterRequest represents the JSON body of a registration
type RegisterRequest struct {
	Name             string   `json:"name" example:"Maria Souza"`
	Email            string   `json:"email" example:"maria@example.com"`
	Phone            string   `json:"phone" example:"+55 11 99999-0000"`
	DateOfBirth      string   `json:"date_of_birth" example:"1990-05-17"`
	Gender           string   `json:"gender" example:"female"`
	Address          string   `json:"address" example:"Rua das Flores, 10"`
	Department       string   `json:"department" example:"Engineering"`
	Position         string   `json:"position" example:"Developer"`
	EmergencyContact string   `json:"emergency_contact" example:"Joao Souza"`
	EmergencyPhone   string   `json:"emergency_phone" example:"+55 11 98888-0000"`
	Images           []string `json:"images" example:"data:image/jpeg;base64,/9j/4AAQ..."`
}

// RegisterResponse represents a successful registration
type RegisterResponse struct {
	Success         bool    `json:"success" example:"true"`
	Message         string  `json:"message" example:"Registered Maria Souza with 3 of 3 photos"`
	UserID          string  `json:"user_id" example:"a1b2c3d4"`
	Name            string  `json:"name" example:"Maria Souza"`
	Email           string  `json:"email" example:"maria@example.com"`
	TrainingPhotos  int     `json:"training_photos" example:"3"`
	ValidPhotos     int     `json:"valid_photos" example:"3"`
	TrainingQuality float64 `json:"training_quality" example:"1"`
}

// LoginRequest represents the JSON body of a login
type LoginRequest struct {
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQ..."`
}

// UserData represents a stored user
type UserData struct {
	UserID           string `json:"user_id" example:"a1b2c3d4"`
	Name             string `json:"name" example:"Maria Souza"`
	Email            string `json:"email" example:"maria@example.com"`
	Phone            string `json:"phone" example:"+55 11 99999-0000"`
	DateOfBirth      string `json:"date_of_birth" example:"1990-05-17"`
	Gender           string `json:"gender" example:"female"`
	Address          string `json:"address" example:"Rua das Flores, 10"`
	Department       string `json:"department" example:"Engineering"`
	Position         string `json:"position" example:"Developer"`
	EmergencyContact string `json:"emergency_contact" example:"Joao Souza"`
	EmergencyPhone   string `json:"emergency_phone" example:"+55 11 98888-0000"`
	RegisteredAt     string `json:"registered_at" example:"2026-01-01T09:00:00Z"`
	LastLogin        string `json:"last_login,omitempty" example:"2026-01-02T08:30:00Z"`
	LoginCount       int    `json:"login_count" example:"4"`
}

// LoginResponse represents a recognized user
type LoginResponse struct {
	Success bool     `json:"success" example:"true"`
	Message string   `json:"message" example:"Welcome, Maria Souza"`
	User    UserData `json:"user"`
	Score   float64  `json:"score" example:"0.83"`
}

// LogoutRequest represents the JSON body of a logout
type LogoutRequest struct {
	UserID string `json:"user_id" example:"a1b2c3d4"`
	Name   string `json:"name" example:"Maria Souza"`
}

// MessageResponse represents a bare acknowledgement
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Goodbye, Maria Souza (18:02)"`
}

// TrainingStatsData describes the stored profile of a user
type TrainingStatsData struct {
	Photos  int     `json:"photos" example:"3"`
	Quality float64 `json:"quality" example:"1"`
	Type    string  `json:"type" example:"multi-photo"`
}

// UserOverviewData is a user with training stats
type UserOverviewData struct {
	UserData
	TrainingStats TrainingStatsData `json:"training_stats"`
}

// AccessEventData is one access log entry
type AccessEventData struct {
	ID        string `json:"id" example:"0b6f3a1e-2c4d-4e5f-8a9b-1c2d3e4f5a6b"`
	Timestamp string `json:"timestamp" example:"2026-01-02T08:30:00Z"`
	UserID    string `json:"user_id" example:"a1b2c3d4"`
	Name      string `json:"name" example:"Maria Souza"`
	Action    string `json:"action" example:"in"`
}

// StatisticsData aggregates the user base
type StatisticsData struct {
	TotalUsers       int     `json:"total_users" example:"12"`
	MultiPhotoUsers  int     `json:"multi_photo_users" example:"10"`
	SinglePhotoUsers int     `json:"single_photo_users" example:"2"`
	TotalLogins      int     `json:"total_logins" example:"31"`
	AvgPhotosPerUser float64 `json:"avg_photos_per_user" example:"2.67"`
}

// AdminDataResponse represents the admin dashboard payload
type AdminDataResponse struct {
	Success    bool               `json:"success" example:"true"`
	Users      []UserOverviewData `json:"users"`
	Logs       []AccessEventData  `json:"logs"`
	Statistics StatisticsData     `json:"statistics"`
}

// HealthResponse represents liveness and readiness probes
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// ErrorDetail carries the machine code and a readable message
type ErrorDetail struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool        `json:"success" example:"false"`
	Error   ErrorDetail `json:"error"`
}

func errorOf(code, message, status, description string) response.Response {
	return response.New(ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}, status, description)
}

var (
	errBadRequest  = errorOf("BAD_REQUEST", "Invalid request body", "400", "Bad Request")
	errRateLimited = errorOf("RATE_LIMIT_EXCEEDED", "Too many requests, please try again later", "429", "Too Many Requests")
	errInternal    = errorOf("INTERNAL_ERROR", "An unexpected error occurred", "500", "Internal Server Error")
	errUnavailable = errorOf("SERVICE_UNAVAILABLE", "Face provider unavailable", "503", "Service Unavailable")
)

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Facegate Face Identity API",
		Version:     "v1.0.0",
		Description: "Face-based check-in and check-out: multi-photo enrollment, 1:N identification and an access log",
		Host:        "localhost:3000",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /register - Register user
		endpoint.New(
			endpoint.POST,
			"/register",
			endpoint.WithTags("Accounts"),
			endpoint.WithSummary("Register a user from several face photos"),
			endpoint.WithDescription("Enrolls a new identity from base64 photos. Enough photos must contain a detectable face and the face must not match an existing identity."),
			endpoint.WithBody(RegisterRequest{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RegisterResponse{}, "201", "User registered successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				errorOf("NO_IMAGES", "No images provided.", "400", "Bad Request"),
				errorOf("EMAIL_EXISTS", "Email already registered", "409", "Conflict"),
				errorOf("FACE_BIOMETRIC_EXISTS", "This face is already registered as Maria Souza", "409", "Conflict"),
				errorOf("TOO_FEW_IMAGES", "At least 2 images are required for registration (received 1)", "422", "Unprocessable Entity"),
				errorOf("INVALID_IMAGE", "Image 2 could not be decoded", "422", "Unprocessable Entity"),
				errorOf("INSUFFICIENT_SAMPLES", "Only 1 out of 3 images had detectable faces.", "422", "Unprocessable Entity"),
				errRateLimited,
				errInternal,
				errUnavailable,
			}),
		),

		// POST /login - Identify and check in
		endpoint.New(
			endpoint.POST,
			"/login",
			endpoint.WithTags("Accounts"),
			endpoint.WithSummary("Log in with a face photo"),
			endpoint.WithDescription("Identifies the face against every enrolled profile, records the login and appends an \"in\" access event"),
			endpoint.WithBody(LoginRequest{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(LoginResponse{}, "200", "Face recognized"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadRequest,
				errorOf("FACE_NOT_RECOGNIZED", "Face not recognized", "401", "Unauthorized"),
				errorOf("USER_NOT_FOUND", "User data not found", "404", "Not Found"),
				errorOf("INVALID_IMAGE", "Invalid image format", "422", "Unprocessable Entity"),
				errRateLimited,
				errInternal,
				errUnavailable,
			}),
		),

		// POST /logout - Check out
		endpoint.New(
			endpoint.POST,
			"/logout",
			endpoint.WithTags("Accounts"),
			endpoint.WithSummary("Log out"),
			endpoint.WithDescription("Appends an \"out\" access event. When only name is given it doubles as the user id."),
			endpoint.WithBody(LogoutRequest{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(MessageResponse{}, "200", "Logged out"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadRequest,
				errInternal,
			}),
		),

		// GET /admin/data - Admin dashboard
		endpoint.New(
			endpoint.GET,
			"/admin/data",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("Get users, access log and statistics"),
			endpoint.WithDescription("Returns every user with its training stats, the 50 most recent access events and aggregate statistics"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AdminDataResponse{}, "200", "Dashboard data"),
			}),
			endpoint.WithErrors([]response.Response{
				errInternal,
			}),
		),

		// GET /health - Liveness
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is alive"),
			}),
		),

		// GET /ready - Readiness
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Checks database connectivity when running on PostgreSQL"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{Status: "ready"}, "200", "Service is ready"),
			}),
			endpoint.WithErrors([]response.Response{
				errorOf("SERVICE_UNAVAILABLE", "Database unreachable", "503", "Service Unavailable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
