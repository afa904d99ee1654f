package core

import "time"

type SlotState = byte

const (
	SlotIdle SlotState = iota
	SlotInUse
	SlotInvalid
)

// slot is the pool's bookkeeping record for one resource. A slot is in
// exactly one state at any time and an InUse slot is owned by exactly
// one handle.
type slot[T any] struct {
	id             string
	resource       T
	state          SlotState
	createdAt      time.Time
	lastReleasedAt time.Time
	useCount       uint64
}
