package profile

// UpdateEmailRequest is the request body for an e-mail change. Well-formedness
// and the changed-address guard live in the user service.
type UpdateEmailRequest struct {
	Email string `json:"email"`
}

// UpdatePasswordRequest is the request body for a password change. The guards
// (required fields, minimum length, confirmation) live in the user service.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}
