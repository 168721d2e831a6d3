// Package authsdk provides a Go client for the Sprintdeck authentication
// service. It carries the cookie-based session across requests and exposes
// typed request/response structures shared with the server's HTTP handlers.
package authsdk
