// Package services defines the error taxonomy shared by the external
// collaborator clients and helpers for wrapping failures with component
// context. Subpackages hold the individual clients.
package services
