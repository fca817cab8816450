package domain

import "time"

// Email is one of a user's addresses. Notifications only go to verified addresses.
type Email struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
}

// User represents an authenticated account in the system.
type User struct {
	Timestamps
	ID           string  `json:"id"`
	Emails       []Email `json:"emails"`
	PasswordHash string  `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	IsAdmin      bool    `json:"is_admin"`
	DisplayName  string  `json:"display_name"`
	// UnsubscribedAll suppresses every outgoing email to this user.
	UnsubscribedAll bool `json:"unsubscribed_all,omitempty"`
	// VerificationToken is the pending email-verification token, cleared
	// once the address is verified.
	VerificationToken string    `json:"verification_token,omitempty"`
	LastLoginAt       time.Time `json:"last_login_at"`
}

// Sanitized returns a copy safe for API responses, with credential
// material removed.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	c.VerificationToken = ""
	return &c
}

// Name returns the best available name to display for the user.
// Falls back to the primary email, then "Anonymous".
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if addr := u.PrimaryEmail(); addr != "" {
		return addr
	}
	return "Anonymous"
}

// PrimaryEmail returns the user's first address, or "" if none.
func (u *User) PrimaryEmail() string {
	if len(u.Emails) == 0 {
		return ""
	}
	return u.Emails[0].Address
}

// VerifiedEmail returns the user's first verified address, or "" if none.
// This is the only address notifications are sent to.
func (u *User) VerifiedEmail() string {
	for _, e := range u.Emails {
		if e.Verified {
			return e.Address
		}
	}
	return ""
}

// HasEmail reports whether any of the user's addresses matches.
func (u *User) HasEmail(address string) bool {
	for _, e := range u.Emails {
		if e.Address == address {
			return true
		}
	}
	return false
}

// Session represents an active user session with refresh token.
// Each device gets its own session.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`
	ClientName       string    `json:"client_name,omitempty"`
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
