package ecs

// DestroyQueue defers entity destruction to a known point in the frame so
// systems can mark entities while iterating their stores.
type DestroyQueue struct {
	pending []EntityID
	marked  map[EntityID]struct{}
}

func NewDestroyQueue() *DestroyQueue {
	return &DestroyQueue{
		pending: make([]EntityID, 0, 64),
		marked:  make(map[EntityID]struct{}, 64),
	}
}

// Mark queues id once; repeated marks within a frame are ignored.
func (q *DestroyQueue) Mark(id EntityID) {
	if _, ok := q.marked[id]; ok {
		return
	}
	q.marked[id] = struct{}{}
	q.pending = append(q.pending, id)
}

func (q *DestroyQueue) Len() int { return len(q.pending) }

// Flush destroys every queued entity in mark order and returns how many
// were still alive.
func (q *DestroyQueue) Flush(em *EntityManager) int {
	n := 0
	for _, id := range q.pending {
		if em.Alive(id) && em.DestroyEntity(id) {
			n++
		}
	}
	q.pending = q.pending[:0]
	clear(q.marked)
	return n
}
