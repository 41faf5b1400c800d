package dto

import "github.com/SscSPs/food_rescue_app/internal/core/domain"

// LoginResponse represents the response for any endpoint that issues tokens.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ToLoginResponse converts a token pair. The refresh token is left out when it travels only in the cookie.
func ToLoginResponse(pair *domain.TokenPair, includeRefresh bool) LoginResponse {
	resp := LoginResponse{Token: pair.AccessToken}
	if includeRefresh {
		resp.RefreshToken = pair.RefreshToken
	}
	return resp
}

// MessageResponse is the body of endpoints that only acknowledge success.
type MessageResponse struct {
	Message string `json:"message"`
}

// SuccessResponse is the canonical acknowledgement.
var SuccessResponse = MessageResponse{Message: "success"}
