package registry

import (
	"sync"

	"github.com/google/btree"
)

// idleBTree keeps idle slot ids ordered by release time. Ties on the
// timestamp are broken by id so every entry has a stable position.
type idleBTree struct {
	tree *btree.BTree
	at   map[string]int64 // id -> indexed releasedAt
	lock *sync.RWMutex
}

type item struct {
	id         string
	releasedAt int64
}

func (i *item) Less(bi btree.Item) bool {
	o := bi.(*item)
	if i.releasedAt != o.releasedAt {
		return i.releasedAt < o.releasedAt
	}
	return i.id < o.id
}

func newBTree() *idleBTree {
	return &idleBTree{
		tree: btree.New(32),
		at:   make(map[string]int64),
		lock: new(sync.RWMutex),
	}
}

func (m *idleBTree) Save(id string, releasedAt int64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if old, ok := m.at[id]; ok {
		m.tree.Delete(&item{id: id, releasedAt: old})
	}
	m.tree.ReplaceOrInsert(&item{id: id, releasedAt: releasedAt})
	m.at[id] = releasedAt
}

func (m *idleBTree) Del(id string) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	old, ok := m.at[id]
	if !ok {
		return false
	}
	m.tree.Delete(&item{id: id, releasedAt: old})
	delete(m.at, id)
	return true
}

func (m *idleBTree) Newest() (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	max := m.tree.Max()
	if max == nil {
		return "", false
	}
	return max.(*item).id, true
}

func (m *idleBTree) Oldest() (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	min := m.tree.Min()
	if min == nil {
		return "", false
	}
	return min.(*item).id, true
}

func (m *idleBTree) FindReleasedAsc(callback func(id string, releasedAt int64) bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	m.tree.Ascend(func(i btree.Item) bool {
		it := i.(*item)
		return callback(it.id, it.releasedAt)
	})
}

func (m *idleBTree) Size() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.tree.Len()
}
