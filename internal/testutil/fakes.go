package testutil

import (
	"sync"
	"time"

	"github.com/hupe1980/tickmesh/search"
)

// Walls is an Occupancy oracle over a fixed set of blocked tiles shared by
// every region. It counts queries.
type Walls struct {
	mu      sync.Mutex
	blocked map[search.Point]struct{}
	Queries int
}

// NewWalls returns an oracle blocking pts.
func NewWalls(pts ...search.Point) *Walls {
	w := &Walls{blocked: map[search.Point]struct{}{}}
	for _, p := range pts {
		w.blocked[p] = struct{}{}
	}
	return w
}

// Block adds p to the blocked set.
func (w *Walls) Block(p search.Point) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.blocked[p] = struct{}{}
}

// Blocked implements search.Occupancy.
func (w *Walls) Blocked(_ string, box search.Box) ([]search.Point, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Queries++
	var out []search.Point
	for p := range w.blocked {
		if box.Contains(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// RecordingObserver collects every measurement for later assertions.
type RecordingObserver struct {
	mu          sync.Mutex
	Nodes       []NodeOutcome
	Checkpoints map[string]int
	Steps       map[string]int
	Ticks       int
}

// NodeOutcome is one observed node tick.
type NodeOutcome struct {
	Name string
	Err  error
}

// NewRecordingObserver returns an empty observer.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{Checkpoints: map[string]int{}, Steps: map[string]int{}}
}

// ObserveNode implements core.Observer.
func (o *RecordingObserver) ObserveNode(name string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Nodes = append(o.Nodes, NodeOutcome{Name: name, Err: err})
}

// ObserveCheckpoint implements core.Observer.
func (o *RecordingObserver) ObserveCheckpoint(key string, size int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Checkpoints[key] = size
}

// ObserveSearchStep implements core.Observer.
func (o *RecordingObserver) ObserveSearchStep(region, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Steps[region+"/"+outcome]++
}

// ObserveTick implements core.Observer.
func (o *RecordingObserver) ObserveTick(time.Duration, int, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Ticks++
}
