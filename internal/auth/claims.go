package auth

import "github.com/golang-jwt/jwt/v5"

// Claims identify an operator allowed to trigger outbound calls and SMS.
// Subject carries the operator id.
type Claims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}
