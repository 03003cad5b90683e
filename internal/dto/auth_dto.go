package dto

type StartAuthRequest struct {
	RedirectURI string `json:"redirectUri" validate:"omitempty,url"`
}

type StartAuthResponse struct {
	AuthURL string `json:"authUrl"`
	State   string `json:"state"`
}

type ExchangeRequest struct {
	Code        string `json:"code" validate:"required"`
	RedirectURI string `json:"redirectUri" validate:"required,url"`
	State       string `json:"state" validate:"required,min=10"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,min=10"`
}

type TokenResponse struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	AccessToken  string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	// Details lists validation failures by field.
	Details []FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type HealthResponse struct {
	Status    string   `json:"status"`
	Timestamp string   `json:"timestamp"`
	DB        string   `json:"db"`
	Providers []string `json:"providers"`
}
