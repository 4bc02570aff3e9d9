package continual

// Stats is a per-parameter statistics buffer: one float32 slice per model
// parameter, in parameter order, each matching that parameter's element
// count. Used for Fisher estimates, omega accumulators, importance scores
// and parameter snapshots.
type Stats [][]float32

// Clone deep-copies the buffer.
func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for i, vals := range s {
		out[i] = make([]float32, len(vals))
		copy(out[i], vals)
	}
	return out
}

// Zero resets every value to 0 in place.
func (s Stats) Zero() {
	for _, vals := range s {
		for j := range vals {
			vals[j] = 0
		}
	}
}

// Add adds other element-wise in place.
func (s Stats) Add(other Stats) {
	for i, vals := range s {
		for j := range vals {
			vals[j] += other[i][j]
		}
	}
}

// AddSquared adds other² element-wise in place. This is the empirical
// Fisher accumulation step: F += g².
func (s Stats) AddSquared(other Stats) {
	for i, vals := range s {
		for j := range vals {
			vals[j] += other[i][j] * other[i][j]
		}
	}
}

// Scale multiplies every value by c in place.
func (s Stats) Scale(c float32) {
	for _, vals := range s {
		for j := range vals {
			vals[j] *= c
		}
	}
}

// Flatten concatenates all slices into one vector.
func (s Stats) Flatten() []float32 {
	total := 0
	for _, vals := range s {
		total += len(vals)
	}
	flat := make([]float32, 0, total)
	for _, vals := range s {
		flat = append(flat, vals...)
	}
	return flat
}

// Unflatten splits a flat vector back into this buffer's shapes.
func (s Stats) Unflatten(flat []float32) Stats {
	out := make(Stats, len(s))
	offset := 0
	for i, vals := range s {
		out[i] = make([]float32, len(vals))
		copy(out[i], flat[offset:offset+len(vals)])
		offset += len(vals)
	}
	return out
}
