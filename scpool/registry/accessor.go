package registry

// Accessor is a release-time ordered index over the ids of idle slots.
// It only orders ids; slot records themselves live with the pool.
type Accessor interface {
	// Save indexes id under releasedAt (unix nanos). Saving an id that
	// is already indexed moves it to the new position.
	Save(id string, releasedAt int64)
	// Del removes id from the index and reports whether it was present.
	Del(id string) bool
	// Newest returns the most recently released id.
	Newest() (string, bool)
	// Oldest returns the longest-idle id.
	Oldest() (string, bool)
	// FindReleasedAsc walks ids oldest-first until the callback returns
	// false.
	FindReleasedAsc(callback func(id string, releasedAt int64) bool)
	Size() int
}

type AccessorType = byte

const (
	BTree AccessorType = iota
)

var accessorType = BTree

func NewAccessor() Accessor {
	switch accessorType {
	case BTree:
		return newBTree()
	default:
		panic("unsupported accessor type")
	}
}
