package experiment

import "sort"

// Early-stopping schedule: no checks during the warm-up, then one check
// every checkEvery iterations against the worst of the lowest recorded
// losses; training stops after more than stopPatience consecutive
// non-improving checks.
const (
	stopWarmup   = 1000
	checkEvery   = 100
	lowestWindow = 4
	stopPatience = 4
)

// earlyStopper tracks the loss trend of one task's training.
type earlyStopper struct {
	lowest []float32 // ascending, at most lowestWindow entries
	streak int       // consecutive non-improving checks
}

func newEarlyStopper() *earlyStopper {
	return &earlyStopper{}
}

// Record feeds one iteration's loss and reports whether training should
// stop. The first check happens one checkEvery after the warm-up;
// iterations outside the check schedule never stop.
func (s *earlyStopper) Record(iter int, loss float32) bool {
	if iter <= stopWarmup || iter%checkEvery != 0 {
		return false
	}

	if len(s.lowest) < lowestWindow {
		s.insert(loss)
		return false
	}

	// Improving means beating the worst of the recorded lowest losses,
	// not their mean. lowest is sorted ascending so the worst is last.
	if loss < s.lowest[len(s.lowest)-1] {
		s.insert(loss)
		s.streak = 0
		return false
	}

	s.streak++
	return s.streak > stopPatience
}

// insert keeps the lowestWindow smallest recorded losses.
func (s *earlyStopper) insert(loss float32) {
	s.lowest = append(s.lowest, loss)
	sort.Slice(s.lowest, func(i, j int) bool { return s.lowest[i] < s.lowest[j] })
	if len(s.lowest) > lowestWindow {
		s.lowest = s.lowest[:lowestWindow]
	}
}
