package core

// PollEngine tracks at most one active two-option poll, one vote per
// connection, last vote wins.
type PollEngine struct {
	options [2]string
	votes   map[string]int
	active  bool
}

// NewPollEngine returns an engine with no active poll.
func NewPollEngine() *PollEngine {
	return &PollEngine{}
}

// Active reports whether a poll is running.
func (e *PollEngine) Active() bool {
	return e.active
}

// Options returns the current poll options; only valid while Active.
func (e *PollEngine) Options() [2]string {
	return e.options
}

// Start opens a poll with exactly two options.
func (e *PollEngine) Start(opt1, opt2 string) error {
	if e.active {
		return ErrPollActive
	}
	e.options = [2]string{opt1, opt2}
	e.votes = make(map[string]int)
	e.active = true
	return nil
}

// Vote records choice (1 or 2) for the connection, overwriting any earlier
// vote, and returns the running tally.
func (e *PollEngine) Vote(connID string, choice int) ([2]int, error) {
	if !e.active {
		return [2]int{}, ErrNoPoll
	}
	if choice != 1 && choice != 2 {
		return [2]int{}, ErrInvalidVote
	}
	e.votes[connID] = choice - 1
	return e.tally(), nil
}

// End closes the poll and returns the final tally.
func (e *PollEngine) End() ([2]string, [2]int, error) {
	if !e.active {
		return [2]string{}, [2]int{}, ErrNoPoll
	}
	options, counts := e.options, e.tally()
	e.active = false
	e.votes = nil
	return options, counts, nil
}

func (e *PollEngine) tally() [2]int {
	var counts [2]int
	for _, v := range e.votes {
		counts[v]++
	}
	return counts
}
