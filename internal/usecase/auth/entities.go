package auth

type RegisterInput struct {
	Username string
	Password string
	Email    string
}

type CreateUserInput struct {
	RegisterInput
	Role string
}

// UpdateUserInput leaves nil fields untouched.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Role     *string
	Password *string
}

type LoginResult struct {
	Token    string `json:"token"`
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
