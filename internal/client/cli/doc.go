// Package cli implements the interactive authctl shell: register, log in,
// verify and refresh the session token, and look up the current user.
package cli
