package services

import "github.com/google/uuid"

// Actor is the authenticated principal performing an operation, threaded
// explicitly through every service call instead of living in ambient state.
type Actor struct {
	ID   uuid.UUID
	Role string
}
