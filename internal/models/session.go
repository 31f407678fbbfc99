package models

// AuthStatus is the state of the local session
type AuthStatus string

const (
	AuthIdle            AuthStatus = "idle"
	AuthAuthenticated   AuthStatus = "authenticated"
	AuthUnauthenticated AuthStatus = "unauthenticated"
)

// AuthState is the persisted auth slice
type AuthState struct {
	Status       AuthStatus `json:"status"`
	RefreshToken string     `json:"refreshToken,omitempty"`
	UID          string     `json:"uid,omitempty"`
	Email        string     `json:"email,omitempty"`
	DisplayName  string     `json:"displayName,omitempty"`
}

// UserProfile is the signed-in user's public profile
type UserProfile struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// UserState is the persisted user slice
type UserState struct {
	Profile *UserProfile `json:"profile"`
}
