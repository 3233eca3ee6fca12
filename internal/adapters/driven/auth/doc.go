// Package auth issues and verifies tenant session tokens and stores the
// client's session in the OS keyring.
package auth
