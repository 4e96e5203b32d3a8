package recognition

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// unitTolerance is how far an embedding norm may drift from 1.0 and still count as unit length.
const unitTolerance = 1e-6

// Embedding is an L2-normalized face descriptor.
// A nil Embedding means "no usable embedding".
type Embedding []float64

// Normalize returns v scaled to unit length.
// It returns nil for empty vectors, zero vectors and vectors holding NaN or Inf,
// so callers never see a garbage descriptor.
func Normalize(v []float64) Embedding {
	if len(v) == 0 {
		return nil
	}

	norm := floats.Norm(v, 2)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil
	}

	out := make(Embedding, len(v))
	floats.ScaleTo(out, 1/norm, v)
	return out
}

// IsUnit reports whether e has norm 1 within tolerance.
func (e Embedding) IsUnit() bool {
	if len(e) == 0 {
		return false
	}
	return math.Abs(floats.Norm(e, 2)-1) <= unitTolerance
}

// Clone returns a copy that does not share storage with e.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}

// CosineSimilarity returns dot(a,b) / (|a|·|b|) clamped to [-1, 1].
// Mismatched lengths, empty input and zero vectors yield 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := floats.Dot(a, b) / (normA * normB)
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}
	return similarity
}

// meanEmbedding averages equal-length embeddings component-wise.
// The result is generally not unit length.
func meanEmbedding(embeddings []Embedding) []float64 {
	if len(embeddings) == 0 {
		return nil
	}

	sum := make([]float64, len(embeddings[0]))
	for _, e := range embeddings {
		floats.Add(sum, e)
	}
	floats.Scale(1/float64(len(embeddings)), sum)
	return sum
}
