package models

// GenerateResponse is the success payload returned to the caller.
type GenerateResponse struct {
	Success               bool   `json:"success"`
	ImageURL              string `json:"imageUrl"`
	GeminiGeneratedPrompt string `json:"geminiGeneratedPrompt"`
}

// ErrorResponse is the failure payload. Details is populated only for
// upstream and internal failures; validation errors carry the message alone.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
