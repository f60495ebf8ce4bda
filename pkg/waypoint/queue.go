package waypoint

// Queue is the ordered list of pending waypoints. Insertion order is
// processing order; only the head is ever inspected.
//
// A Queue is not safe for concurrent use. The planner goroutine owns it.
type Queue struct {
	items []Waypoint
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends w to the tail.
func (q *Queue) Push(w Waypoint) {
	q.items = append(q.items, w)
}

// Peek returns the head without removing it.
func (q *Queue) Peek() (Waypoint, bool) {
	if len(q.items) == 0 {
		return Waypoint{}, false
	}
	return q.items[0], true
}

// Pop removes and returns the head. It reports false on an empty queue.
func (q *Queue) Pop() (Waypoint, bool) {
	if len(q.items) == 0 {
		return Waypoint{}, false
	}
	head := q.items[0]
	q.items[0] = Waypoint{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return head, true
}

// Len returns the number of pending waypoints.
func (q *Queue) Len() int {
	return len(q.items)
}

// Snapshot returns a copy of the pending waypoints, head first.
func (q *Queue) Snapshot() []Waypoint {
	out := make([]Waypoint, len(q.items))
	copy(out, q.items)
	return out
}
