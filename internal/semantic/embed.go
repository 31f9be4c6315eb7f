package semantic

import (
	"crypto/md5"
	"math"
	"strings"
)

// semantic axes layered on top of the hash embedding: dimension 0 encodes
// warmth, 1 brightness (negative = dark), 2 weight (negative = thin).
var (
	warmWords   = []string{"warm", "hot", "cozy"}
	brightWords = []string{"bright", "shiny", "sparkly"}
	darkWords   = []string{"dark", "moody", "ominous"}
	heavyWords  = []string{"fat", "thick", "punchy"}
	lightWords  = []string{"thin", "light", "delicate"}
)

// tokenVector derives a deterministic unit vector for a token: the MD5
// digest bytes scaled to [-1,1] fill the leading dimensions, then the
// semantic axes override their slots before normalization.
func tokenVector(token string, dim int) []float64 {
	digest := md5.Sum([]byte(token))
	v := make([]float64, dim)
	for i := 0; i < len(digest) && i < dim; i++ {
		v[i] = (float64(digest[i]) - 128.0) / 128.0
	}

	switch {
	case containsAny(token, warmWords):
		v[0] = 1.0
	case containsAny(token, brightWords):
		v[1] = 1.0
	case containsAny(token, darkWords):
		v[1] = -1.0
	}
	switch {
	case containsAny(token, heavyWords):
		v[2] = 1.0
	case containsAny(token, lightWords):
		v[2] = -1.0
	}

	normalize(v)
	return v
}

func containsAny(token string, words []string) bool {
	for _, w := range words {
		if strings.Contains(token, w) {
			return true
		}
	}
	return false
}

// normalize scales v to unit length in place, leaving zero vectors alone.
func normalize(v []float64) {
	n := norm(v)
	if n == 0 {
		return
	}
	for i := range v {
		v[i] /= n
	}
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// cosine returns 0 when either vector has zero norm.
func cosine(a, b []float64) float64 {
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot(a, b) / (na * nb)
}

// meanOf averages a set of vectors. Returns a zero vector for empty input.
func meanOf(vectors [][]float64, dim int) []float64 {
	out := make([]float64, dim)
	if len(vectors) == 0 {
		return out
	}
	for _, v := range vectors {
		for i := range v {
			out[i] += v[i]
		}
	}
	for i := range out {
		out[i] /= float64(len(vectors))
	}
	return out
}

func add(dst, src []float64, scale float64) {
	for i := range dst {
		dst[i] += scale * src[i]
	}
}

// logIDF is the inverse document frequency weight ln(total/docCount).
func logIDF(totalDocs, docCount int) float64 {
	return math.Log(float64(totalDocs) / float64(docCount))
}
