// Package sysid issues process-unique identifiers for pool slots.
package sysid

import "github.com/google/uuid"

// NextID returns a new unique slot identifier.
func NextID() string {
	return uuid.NewString()
}
