package model

// Session identifies the logged-in user.
type Session struct {
	Username string `json:"username"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
