// Package common contains shared constants and sentinel errors used across
// gophauth components.
package common

// TokenLifetimeSeconds is the default lifetime of an issued token.
const TokenLifetimeSeconds = 1800

// BearerScheme prefixes tokens in the Authorization header.
const BearerScheme = "Bearer"
