package dto

// OnboardingRequest captures POST /auth/onboarding payload.
type OnboardingRequest struct {
	Year       int    `json:"year" validate:"required,min=1,max=7"`
	Department string `json:"department" validate:"required"`
}

// OnboardingResponse returns the freshly issued anonymous identity.
type OnboardingResponse struct {
	Handle string `json:"handle"`
	QRCode string `json:"qrCode"`
}

// IdentityResponse is the owning student's view of their QR identity.
type IdentityResponse struct {
	Username string `json:"username"`
	QRSecret string `json:"qrSecret"`
	QRCode   string `json:"qrCode"`
}
