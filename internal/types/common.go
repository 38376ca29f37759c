package types

// HTTP Header Constants
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "X-Request-ID"
)

// Authentication Constants
const (
	BearerPrefix    = "Bearer "
	AccessTokenName = "access_token"
	ClaimKey        = "claim"
)

// Common Values
const (
	UserRole  = "user"
	AdminRole = "admin"
)

// UserCtxName is the fiber.Locals key holding the authenticated UserContext
const UserCtxName = "user"

// UserContext is the identity carried by a verified token
type UserContext struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user holds the admin role
func (u UserContext) IsAdmin() bool {
	return u.Role == AdminRole
}
