package entities

import "strings"

const MinPasswordLength = 8

// Credentials is the body of the login and create-admin endpoints.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

func (c *Credentials) Normalize() {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

type TokenResponse struct {
	Token string `json:"token"`
}
