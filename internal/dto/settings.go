package dto

// RefreshSettingsRequest sets the auto-refresh cadence. Zero disables it.
type RefreshSettingsRequest struct {
	IntervalMinutes *int `json:"intervalMinutes" binding:"required,gte=0"`
}

// RefreshSettingsResponse echoes the active cadence.
type RefreshSettingsResponse struct {
	IntervalMinutes int `json:"intervalMinutes"`
}

// TokenRequest stores the user's Canvas access token for background syncs.
type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// TokenStatusResponse reports whether a token is stored, never the token.
type TokenStatusResponse struct {
	Configured bool `json:"configured"`
}
