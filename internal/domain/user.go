package domain

import (
	"strings"
	"time"
)

// User representa os metadados de uma identidade cadastrada.
// ID é a mesma chave usada pelo perfil biométrico na galeria.
type User struct {
	ID               string     `json:"user_id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	DateOfBirth      string     `json:"date_of_birth"`
	Gender           string     `json:"gender"`
	Address          string     `json:"address"`
	Department       string     `json:"department"`
	Position         string     `json:"position"`
	EmergencyContact string     `json:"emergency_contact"`
	EmergencyPhone   string     `json:"emergency_phone"`
	RegisteredAt     time.Time  `json:"registered_at"`
	LastLoginAt      *time.Time `json:"last_login,omitempty"`
	LoginCount       int        `json:"login_count"`
}

// Normalize trims every field and lower-cases the email.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeEmail(u.Email)
	u.Phone = strings.TrimSpace(u.Phone)
	u.DateOfBirth = strings.TrimSpace(u.DateOfBirth)
	u.Gender = strings.TrimSpace(u.Gender)
	u.Address = strings.TrimSpace(u.Address)
	u.Department = strings.TrimSpace(u.Department)
	u.Position = strings.TrimSpace(u.Position)
	u.EmergencyContact = strings.TrimSpace(u.EmergencyContact)
	u.EmergencyPhone = strings.TrimSpace(u.EmergencyPhone)
}

// DisplayName returns the name, falling back to the id.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}

// NormalizeEmail is the canonical form used for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TrainingType classifica o perfil biométrico de um usuário no painel admin.
type TrainingType string

const (
	TrainingMultiPhoto  TrainingType = "multi-photo"
	TrainingSinglePhoto TrainingType = "single-photo"
	TrainingError       TrainingType = "error"
	TrainingNoData      TrainingType = "no-data"
)

// TrainingStats describes the stored profile behind a user.
type TrainingStats struct {
	Photos  int          `json:"photos"`
	Quality float64      `json:"quality"`
	Type    TrainingType `json:"type"`
}

// UserOverview is a user plus its training stats.
type UserOverview struct {
	User
	TrainingStats TrainingStats `json:"training_stats"`
}

// Statistics agrega os números exibidos no painel.
type Statistics struct {
	TotalUsers       int     `json:"total_users"`
	MultiPhotoUsers  int     `json:"multi_photo_users"`
	SinglePhotoUsers int     `json:"single_photo_users"`
	TotalLogins      int     `json:"total_logins"`
	AvgPhotosPerUser float64 `json:"avg_photos_per_user"`
}

// AccessAction is the direction of an access event.
type AccessAction string

const (
	ActionIn  AccessAction = "in"
	ActionOut AccessAction = "out"
)

// AccessEvent is one entry of the access log.
type AccessEvent struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	UserID    string       `json:"user_id"`
	Name      string       `json:"name"`
	Action    AccessAction `json:"action"`
}

// AdminOverview is the payload of the admin dashboard.
type AdminOverview struct {
	Users      []UserOverview `json:"users"`
	Logs       []AccessEvent  `json:"logs"`
	Statistics Statistics     `json:"statistics"`
}
