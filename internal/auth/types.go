package auth

// LoginRequest carries the shared admin password.
type LoginRequest struct {
	Password string `json:"password"`
}

// TokenResponse is returned by a successful admin login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
