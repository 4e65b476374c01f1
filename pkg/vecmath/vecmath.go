// Package vecmath содержит операции над float32-векторами эмбеддингов.
package vecmath

import "math"

// Dot возвращает скалярное произведение a и b. Длины должны совпадать (ответственность вызывающего).
// Накопление идёт в float64.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}

	return sum
}

// Norm возвращает евклидову норму v.
func Norm(v []float32) float64 {
	return math.Sqrt(Dot(v, v))
}

// NormalizeInPlace приводит v к единичной длине.
// Нулевой вектор не изменяется, в этом случае возвращается false.
func NormalizeInPlace(v []float32) bool {
	norm := Norm(v)
	if norm == 0 {
		return false
	}

	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}

	return true
}

// NormalizedCopy возвращает нормализованную копию src; src не меняется.
func NormalizedCopy(src []float32) []float32 {
	dst := make([]float32, len(src))
	copy(dst, src)
	NormalizeInPlace(dst)
	return dst
}
