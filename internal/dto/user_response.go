package dto

import "time"

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func ToUserResponse(user interface {
	GetUserID() string
	GetEmail() string
	GetCreatedAt() time.Time
}) UserResponse {
	return UserResponse{
		ID:        user.GetUserID(),
		Email:     user.GetEmail(),
		CreatedAt: user.GetCreatedAt(),
	}
}
