// Package testutil provides fixtures shared by package tests: throwaway git
// repositories with a fixed identity and clock, and the login-ui history.
package testutil
