package graph

import (
	"container/heap"
	"slices"
)

// ShortestPath runs Dijkstra's algorithm from source and returns the total
// distance to destination and the path between them, both endpoints
// included. Callers reject source == destination before calling.
//
// The queue is ordered by tentative distance, then by push order, so the
// result is deterministic for a given graph. A neighbor's predecessor only
// changes on a strictly shorter distance, which makes the first-seen of
// several equal-cost routes win.
func ShortestPath(g *Graph, source, destination string) (float64, []string, error) {
	var missing []string
	if !g.Has(source) {
		missing = append(missing, source)
	}
	if !g.Has(destination) {
		missing = append(missing, destination)
	}
	if len(missing) > 0 {
		return 0, nil, &UnknownNodeError{Codes: missing}
	}

	dist := map[string]float64{source: 0}
	prev := make(map[string]string)
	settled := make(map[string]bool, g.NodeCount())

	pq := &queue{}
	var seq uint64
	heap.Push(pq, &item{code: source, dist: 0, seq: seq})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*item)
		if settled[cur.code] {
			// Stale entry superseded by a later, shorter push.
			continue
		}
		settled[cur.code] = true
		if cur.code == destination {
			break
		}

		for _, e := range g.Neighbors(cur.code) {
			if settled[e.To] {
				continue
			}
			alt := cur.dist + e.Weight
			if d, ok := dist[e.To]; ok && alt >= d {
				continue
			}
			dist[e.To] = alt
			prev[e.To] = cur.code
			seq++
			heap.Push(pq, &item{code: e.To, dist: alt, seq: seq})
		}
	}

	if !settled[destination] {
		return 0, nil, &NoPathError{From: source, To: destination}
	}

	path := []string{destination}
	for at := destination; at != source; {
		at = prev[at]
		path = append(path, at)
	}
	slices.Reverse(path)

	return dist[destination], path, nil
}

// item is a queue entry. Entries are never updated in place; a shorter
// distance pushes a new entry and the old one is skipped when popped.
type item struct {
	code string
	dist float64
	seq  uint64
}

// queue is a min-heap of items implementing heap.Interface.
type queue []*item

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(*item)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}
