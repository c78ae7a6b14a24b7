package sessionclient

// Role of an authenticated principal. Mirrors the gateway's closed set.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Record is the authenticated identity as rendered by the gateway.
// PhoneNumber is populated for user records, Email for admin records,
// never both.
type Record struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
}
