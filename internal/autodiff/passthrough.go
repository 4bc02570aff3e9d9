package autodiff

import (
	"github.com/born-ml/lifelong/internal/tensor"
)

// This file forwards the Backend operations that have no recorded
// backward pass to the wrapped backend. Calling one of these while the
// tape is recording does not break the tape; the operation simply does
// not contribute gradients (useful for evaluation-time ops like Argmax
// and for optimizer math like Sqrt).

// Conv2DInputBackward computes the Conv2D gradient w.r.t. input (not differentiated).
func (b *AutodiffBackend[B]) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return b.inner.Conv2DInputBackward(input, kernel, grad, stride, padding)
}

// Conv2DKernelBackward computes the Conv2D gradient w.r.t. kernel (not differentiated).
func (b *AutodiffBackend[B]) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return b.inner.Conv2DKernelBackward(input, kernel, grad, stride, padding)
}

// MaxPool2DBackward computes the MaxPool2D gradient w.r.t. input (not differentiated).
func (b *AutodiffBackend[B]) MaxPool2DBackward(input, grad *tensor.RawTensor, maxIndices []int, kernelSize, stride int) *tensor.RawTensor {
	return b.inner.MaxPool2DBackward(input, grad, maxIndices, kernelSize, stride)
}

// BatchMatMul performs batched matrix multiplication (not differentiated).
func (b *AutodiffBackend[B]) BatchMatMul(a, c *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.BatchMatMul(a, c)
}

// MulScalar multiplies element-wise by a scalar (not differentiated).
func (b *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.inner.MulScalar(x, scalar)
}

// AddScalar adds a scalar element-wise (not differentiated).
func (b *AutodiffBackend[B]) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.inner.AddScalar(x, scalar)
}

// SubScalar subtracts a scalar element-wise (not differentiated).
func (b *AutodiffBackend[B]) SubScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.inner.SubScalar(x, scalar)
}

// DivScalar divides element-wise by a scalar (not differentiated).
func (b *AutodiffBackend[B]) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.inner.DivScalar(x, scalar)
}

// Exp computes the element-wise exponential (not differentiated).
func (b *AutodiffBackend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Exp(x)
}

// Sqrt computes the element-wise square root (not differentiated).
func (b *AutodiffBackend[B]) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Sqrt(x)
}

// Rsqrt computes the element-wise reciprocal square root (not differentiated).
func (b *AutodiffBackend[B]) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Rsqrt(x)
}

// Cos computes the element-wise cosine (not differentiated).
func (b *AutodiffBackend[B]) Cos(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Cos(x)
}

// Sin computes the element-wise sine (not differentiated).
func (b *AutodiffBackend[B]) Sin(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Sin(x)
}

// Greater compares element-wise a > c.
func (b *AutodiffBackend[B]) Greater(a, c *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Greater(a, c)
}

// Lower compares element-wise a < c.
func (b *AutodiffBackend[B]) Lower(a, c *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Lower(a, c)
}

// GreaterEqual compares element-wise a >= c.
func (b *AutodiffBackend[B]) GreaterEqual(a, c *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.GreaterEqual(a, c)
}

// LowerEqual compares element-wise a <= c.
func (b *AutodiffBackend[B]) LowerEqual(a, c *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.LowerEqual(a, c)
}

// Equal compares element-wise a == c.
func (b *AutodiffBackend[B]) Equal(a, c *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Equal(a, c)
}

// NotEqual compares element-wise a != c.
func (b *AutodiffBackend[B]) NotEqual(a, c *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.NotEqual(a, c)
}

// Or computes the element-wise logical OR of bool tensors.
func (b *AutodiffBackend[B]) Or(a, c *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Or(a, c)
}

// And computes the element-wise logical AND of bool tensors.
func (b *AutodiffBackend[B]) And(a, c *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.And(a, c)
}

// Not computes the element-wise logical NOT of a bool tensor.
func (b *AutodiffBackend[B]) Not(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Not(x)
}

// Sum reduces to a scalar total (not differentiated).
func (b *AutodiffBackend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Sum(x)
}

// SumDim sums along a dimension (not differentiated).
func (b *AutodiffBackend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return b.inner.SumDim(x, dim, keepDim)
}

// MeanDim averages along a dimension (not differentiated).
func (b *AutodiffBackend[B]) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return b.inner.MeanDim(x, dim, keepDim)
}

// Argmax returns the index of the maximum along a dimension.
func (b *AutodiffBackend[B]) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Argmax(x, dim)
}

// Cat concatenates tensors along a dimension (not differentiated).
func (b *AutodiffBackend[B]) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Cat(tensors, dim)
}

// Chunk splits a tensor into n equal parts along a dimension.
func (b *AutodiffBackend[B]) Chunk(x *tensor.RawTensor, n, dim int) []*tensor.RawTensor {
	return b.inner.Chunk(x, n, dim)
}

// Unsqueeze inserts a dimension of size 1 (not differentiated).
func (b *AutodiffBackend[B]) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Unsqueeze(x, dim)
}

// Squeeze removes a dimension of size 1 (not differentiated).
func (b *AutodiffBackend[B]) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Squeeze(x, dim)
}

// Gather selects elements along a dimension by index (not differentiated).
func (b *AutodiffBackend[B]) Gather(x *tensor.RawTensor, dim int, index *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Gather(x, dim, index)
}

// Where selects elements from x or y by condition (not differentiated).
func (b *AutodiffBackend[B]) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Where(condition, x, y)
}

// Embedding looks up embedding rows by index (not differentiated).
func (b *AutodiffBackend[B]) Embedding(weight, indices *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Embedding(weight, indices)
}

// Expand broadcasts a tensor to a larger shape (not differentiated).
func (b *AutodiffBackend[B]) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return b.inner.Expand(x, shape)
}

// Cast converts a tensor to a different data type (not differentiated).
func (b *AutodiffBackend[B]) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	return b.inner.Cast(x, dtype)
}
