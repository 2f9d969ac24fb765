package core

import "time"

// Observer receives execution measurements. Implementations must be cheap;
// they are called inline on the tick path.
type Observer interface {
	// ObserveNode is called once per task tick with its outcome.
	ObserveNode(name string, err error)
	// ObserveCheckpoint is called for every committed checkpoint.
	ObserveCheckpoint(key string, size int)
	// ObserveSearchStep is called once per placement search step.
	ObserveSearchStep(region, outcome string)
	// ObserveTick is called by the runner after a whole tick.
	ObserveTick(d time.Duration, budget int, known bool)
}

// NoOpObserver discards all measurements.
type NoOpObserver struct{}

// ObserveNode discards a node outcome.
func (NoOpObserver) ObserveNode(string, error) {}

// ObserveCheckpoint discards a checkpoint size.
func (NoOpObserver) ObserveCheckpoint(string, int) {}

// ObserveSearchStep discards a search step.
func (NoOpObserver) ObserveSearchStep(string, string) {}

// ObserveTick discards a tick measurement.
func (NoOpObserver) ObserveTick(time.Duration, int, bool) {}

// MultiObserver fans every measurement out to all of its observers in order.
type MultiObserver []Observer

// ObserveNode forwards a node outcome.
func (m MultiObserver) ObserveNode(name string, err error) {
	for _, o := range m {
		o.ObserveNode(name, err)
	}
}

// ObserveCheckpoint forwards a checkpoint size.
func (m MultiObserver) ObserveCheckpoint(key string, size int) {
	for _, o := range m {
		o.ObserveCheckpoint(key, size)
	}
}

// ObserveSearchStep forwards a search step.
func (m MultiObserver) ObserveSearchStep(region, outcome string) {
	for _, o := range m {
		o.ObserveSearchStep(region, outcome)
	}
}

// ObserveTick forwards a tick measurement.
func (m MultiObserver) ObserveTick(d time.Duration, budget int, known bool) {
	for _, o := range m {
		o.ObserveTick(d, budget, known)
	}
}
