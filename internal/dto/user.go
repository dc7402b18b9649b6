package dto

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the JSON body for POST /auth/register. Email is required
// because it is where reminders are delivered.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=120"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=1"`
}

// ChangeEmailRequest is the JSON body for PATCH /auth/email.
type ChangeEmailRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// UserResponse is returned when user info is needed (e.g. after login).
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
