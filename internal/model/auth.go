package model

// SignupRequest is the body of POST /signup.
// Presence is checked by the auth service so the error message stays the same for every caller.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest is the body of POST /signin
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of PUT /password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangeRoleRequest is used by admins to change another account's role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}
