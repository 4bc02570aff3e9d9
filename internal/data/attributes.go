package data

import (
	"fmt"

	"github.com/born-ml/lifelong/internal/tensor"
)

// Attributes is the global class-attribute matrix: one attribute vector per
// class, shape [NumClasses, Dim].
//
// Zero-shot classification scores an image embedding against every class's
// attribute vector, so classes whose rows are zeroed receive no attribute
// signal and effectively cannot be predicted.
type Attributes struct {
	Data       []float32
	NumClasses int
	Dim        int
}

// NewAttributes wraps a row-major [numClasses * dim] matrix.
func NewAttributes(values []float32, numClasses, dim int) (*Attributes, error) {
	if len(values) != numClasses*dim {
		return nil, fmt.Errorf("data.NewAttributes: want %d values for [%d, %d], got %d",
			numClasses*dim, numClasses, dim, len(values))
	}
	return &Attributes{Data: values, NumClasses: numClasses, Dim: dim}, nil
}

// Row returns the attribute vector of a class (a view, not a copy).
func (a *Attributes) Row(class int) []float32 {
	return a.Data[class*a.Dim : (class+1)*a.Dim]
}

// Masked returns a zero-initialized copy of the matrix with only the given
// classes' rows populated.
//
// This is the multi-head attribute mask: heads for classes outside the set
// see all-zero attributes.
func (a *Attributes) Masked(classes []int) *Attributes {
	masked := &Attributes{
		Data:       make([]float32, len(a.Data)),
		NumClasses: a.NumClasses,
		Dim:        a.Dim,
	}
	for _, c := range classes {
		copy(masked.Row(c), a.Row(c))
	}
	return masked
}

// Tensor materializes the matrix as a [NumClasses, Dim] tensor on the given
// backend.
func AttrTensor[B tensor.Backend](a *Attributes, backend B) (*tensor.Tensor[float32, B], error) {
	t, err := tensor.FromSlice[float32](a.Data, tensor.Shape{a.NumClasses, a.Dim}, backend)
	if err != nil {
		return nil, fmt.Errorf("data.AttrTensor: %w", err)
	}
	return t, nil
}
