package models

import "time"

// TokenPair — пара access+refresh токенов, выдаваемая при
// signup/login/refresh.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}
