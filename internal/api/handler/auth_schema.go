package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// User-facing messages returned on success paths.
const (
	msgRegistered   = "User registered successfully"
	msgLoggedIn     = "Logged in successfully"
	msgRoleAssigned = "Role assigned successfully"
)

// --- Request / Response types ---

type registerRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=64"`
	Email     string `json:"email"      validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=64"`
	LastName  string `json:"last_name"  validate:"required,max=64"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
}

type registerResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	Message  string   `json:"message"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Message  string   `json:"message"`
}

type assignRoleRequest struct {
	UserID   string `json:"user_id"   validate:"required"`
	RoleName string `json:"role_name" validate:"required"`
}

type assignRoleResponse struct {
	Message string   `json:"message"`
	Roles   []string `json:"roles"`
}
