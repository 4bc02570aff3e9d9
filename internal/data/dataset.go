// Package data provides task splits, class-attribute matrices and
// memory/replay sampling for continual-learning experiments.
//
// A Dataset is a backend-agnostic collection of examples stored as flat
// float32 features plus integer labels. Tensors are materialized per batch
// for whichever backend a run uses, so parallel runs never share tensor
// storage.
package data

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/lifelong/internal/tensor"
)

// Dataset holds N examples as flat features and integer class labels.
//
// Images is laid out as [N * Feature.NumElements()] in row-major order;
// Feature is the per-example shape (e.g. {784} for a flattened image or
// {3, 32, 32} for a CHW image).
type Dataset struct {
	Images  []float32
	Labels  []int32
	Feature tensor.Shape
}

// Len returns the number of examples.
func (d Dataset) Len() int {
	return len(d.Labels)
}

// FeatureSize returns the number of values per example.
func (d Dataset) FeatureSize() int {
	return d.Feature.NumElements()
}

// Example returns the feature slice of example i (a view, not a copy).
func (d Dataset) Example(i int) []float32 {
	fs := d.FeatureSize()
	return d.Images[i*fs : (i+1)*fs]
}

// Concat returns a new Dataset with b's examples appended after a's.
//
// Panics if the feature shapes differ.
func Concat(a, b Dataset) Dataset {
	if a.Len() == 0 {
		return b
	}
	if b.Len() == 0 {
		return a
	}
	if !a.Feature.Equal(b.Feature) {
		panic(fmt.Sprintf("data.Concat: feature shape mismatch %v vs %v", a.Feature, b.Feature))
	}

	out := Dataset{
		Images:  make([]float32, 0, len(a.Images)+len(b.Images)),
		Labels:  make([]int32, 0, len(a.Labels)+len(b.Labels)),
		Feature: a.Feature,
	}
	out.Images = append(out.Images, a.Images...)
	out.Images = append(out.Images, b.Images...)
	out.Labels = append(out.Labels, a.Labels...)
	out.Labels = append(out.Labels, b.Labels...)
	return out
}

// Permute returns a copy of the dataset reordered by perm.
//
// perm must be a permutation of [0, Len).
func (d Dataset) Permute(perm []int) Dataset {
	if len(perm) != d.Len() {
		panic(fmt.Sprintf("data.Permute: permutation length %d != dataset length %d", len(perm), d.Len()))
	}

	fs := d.FeatureSize()
	out := Dataset{
		Images:  make([]float32, len(d.Images)),
		Labels:  make([]int32, len(d.Labels)),
		Feature: d.Feature,
	}
	for dst, src := range perm {
		copy(out.Images[dst*fs:(dst+1)*fs], d.Images[src*fs:(src+1)*fs])
		out.Labels[dst] = d.Labels[src]
	}
	return out
}

// Shuffle returns the dataset reordered by a fresh random permutation,
// along with the permutation used (so per-example side data like sample
// weights can be reordered identically).
func (d Dataset) Shuffle(rng *rand.Rand) (Dataset, []int) {
	perm := rng.Perm(d.Len())
	return d.Permute(perm), perm
}

// PermuteFloats reorders values by the same permutation Shuffle produced.
func PermuteFloats(values []float32, perm []int) []float32 {
	out := make([]float32, len(values))
	for dst, src := range perm {
		out[dst] = values[src]
	}
	return out
}

// Batch materializes examples [offset, offset+size) as tensors on the
// given backend.
//
// Returns an images tensor of shape [size, Feature...] and a labels tensor
// of shape [size].
func Batch[B tensor.Backend](d Dataset, offset, size int, backend B) (*tensor.Tensor[float32, B], *tensor.Tensor[int32, B], error) {
	if offset < 0 || offset+size > d.Len() {
		return nil, nil, fmt.Errorf("data.Batch: range [%d, %d) out of bounds for %d examples", offset, offset+size, d.Len())
	}

	shape := append(tensor.Shape{size}, d.Feature...)
	fs := d.FeatureSize()

	images, err := tensor.FromSlice[float32](d.Images[offset*fs:(offset+size)*fs], shape, backend)
	if err != nil {
		return nil, nil, fmt.Errorf("data.Batch: images: %w", err)
	}

	labels, err := tensor.FromSlice[int32](d.Labels[offset:offset+size], tensor.Shape{size}, backend)
	if err != nil {
		return nil, nil, fmt.Errorf("data.Batch: labels: %w", err)
	}

	return images, labels, nil
}
