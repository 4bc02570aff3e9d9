package data

// WeightFunc computes one positive weight per example for a training set.
//
// seen lists the classes evaluated so far (current task included). The
// exact down-weighting policy is delegated to the function; implementations
// must return exactly len(labels) weights, all > 0.
type WeightFunc func(labels []int32, seen []int) []float32

// UniformWeights assigns weight 1 to every example. Used whenever replay
// sampling is disabled.
func UniformWeights(labels []int32, _ []int) []float32 {
	weights := make([]float32, len(labels))
	for i := range weights {
		weights[i] = 1.0
	}
	return weights
}

// BalancedWeights counters class imbalance in the assembled training set
// (current task plus replay pool): each example is weighted inversely to
// its class frequency, normalized so the mean weight is 1. Classes outside
// the seen set are additionally halved so stale replay classes cannot
// dominate the loss.
func BalancedWeights(labels []int32, seen []int) []float32 {
	counts := make(map[int32]int)
	for _, label := range labels {
		counts[label]++
	}

	seenSet := make(map[int32]bool, len(seen))
	for _, c := range seen {
		seenSet[int32(c)] = true
	}

	n := float32(len(labels))
	numClasses := float32(len(counts))

	weights := make([]float32, len(labels))
	for i, label := range labels {
		w := n / (numClasses * float32(counts[label]))
		if !seenSet[label] {
			w *= 0.5
		}
		weights[i] = w
	}
	return weights
}
