// Package domain holds cross-cutting domain types shared by the service layers.
package domain

import "crewlink-server/services/messaging-api/internal/domain/user"

// Principal identifies the authenticated caller for the duration of a request
// or websocket session.
type Principal struct {
	UserID uint
	Email  string
	Role   user.Role
}
