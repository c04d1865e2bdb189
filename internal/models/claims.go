package models

import "github.com/golang-jwt/jwt/v5"

// Account permissions
const (
	PermissionWalletRead      = "wallet:read"
	PermissionWalletWrite     = "wallet:write"
	PermissionTransactionRead = "transaction:read"
)

// AccountClaims is the JWT payload issued to an account holder.
type AccountClaims struct {
	jwt.RegisteredClaims
	AccountID    uint     `json:"account_id"`
	Email        string   `json:"email"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *AccountClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// DefaultPermissions returns the permissions granted to every account holder.
func DefaultPermissions() []string {
	return []string{
		PermissionWalletRead,
		PermissionWalletWrite,
		PermissionTransactionRead,
	}
}
