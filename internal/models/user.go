package models

// Role values accepted by the admin role-change endpoint.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User represents a registered account. An account may carry a password,
// a Google-verified email, a Firebase-verified phone number, or any mix of
// the three; all login paths resolve to the same row.
type User struct {
	BaseModel
	Email        string  `gorm:"uniqueIndex" json:"email"`
	PhoneNumber  *string `gorm:"uniqueIndex" json:"phone_number"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	PasswordHash string  `json:"-"`
	IsStaff      bool    `json:"is_staff"`
	IsSuperuser  bool    `json:"is_superuser"`
	IsActive     bool    `json:"is_active"`
	IsBlocked    bool    `json:"is_blocked"`
	Cart         *Cart   `json:"cart,omitempty"`
	Orders       []Order `json:"orders,omitempty"`
}

// CanAuthenticate reports whether the account may be issued or continue a
// session. Blocked wins over active: a blocked account is rejected even if
// is_active drifted back to true.
func (u *User) CanAuthenticate() bool {
	return !u.IsBlocked && u.IsActive
}
