package models

import (
	"strings"
	"time"
)

// UserResponse is the display representation of a user. It never carries
// the password hash.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	Age       *int      `json:"age"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullDisplayName(),
		Age:       u.Age,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

func NewUserResponses(users []User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// UserCreateRequest is the signup shape; it is the only one that accepts a password.
type UserCreateRequest struct {
	Username  string `json:"username" binding:"required,max=150,username"`
	Email     string `json:"email" binding:"required,email,max=254"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Password  string `json:"password" binding:"required,min=8"`
	Age       *int   `json:"age" binding:"omitnil,gte=0"`
	Bio       string `json:"bio" binding:"max=500"`
}

// UserUpdateRequest backs PUT and PATCH on a user. Nil fields are left
// untouched; PUT additionally requires username and email.
type UserUpdateRequest struct {
	Username  *string `json:"username" binding:"omitnil,min=1,max=150,username"`
	Email     *string `json:"email" binding:"omitnil,email,max=254"`
	FirstName *string `json:"first_name" binding:"omitnil,max=150"`
	LastName  *string `json:"last_name" binding:"omitnil,max=150"`
	Age       *int    `json:"age" binding:"omitnil,gte=0"`
	Bio       *string `json:"bio" binding:"omitnil,max=500"`
}

// Normalize trims surrounding whitespace from the text fields. The password
// is kept as typed so it matches what login receives.
func (r *UserCreateRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Bio = strings.TrimSpace(r.Bio)
}

func (r *UserUpdateRequest) Normalize() {
	trimPtr(r.Username)
	trimPtr(r.Email)
	trimPtr(r.FirstName)
	trimPtr(r.LastName)
	trimPtr(r.Bio)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// MissingForReplace lists the fields a full replacement must carry.
func (r UserUpdateRequest) MissingForReplace() []string {
	var missing []string
	if r.Username == nil {
		missing = append(missing, "username")
	}
	if r.Email == nil {
		missing = append(missing, "email")
	}
	return missing
}
