package generator

import (
	"bytes"
	"math"
	"math/rand"
)

// The top level functions of math/rand are safe for concurrent use, which
// matters since every terminal goroutine draws from here.

// NextInt64 returns a uniform value in [0, n).
func NextInt64(n int64) int64 {
	return rand.Int63n(n)
}

// NextFloat64 returns a uniform value in [0.0, 1.0).
func NextFloat64() float64 {
	return rand.Float64()
}

// RandomInt returns a uniform value in the closed range [min, max].
func RandomInt(min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + rand.Int63n(max-min+1)
}

// RandomBool returns true with probability p.
func RandomBool(p float64) bool {
	return rand.Float64() < p
}

// Perm returns a random permutation of [1, n].
func Perm(n int) []int64 {
	ret := make([]int64, n)
	for i, v := range rand.Perm(n) {
		ret[i] = int64(v + 1)
	}
	return ret
}

const (
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RandStr returns an alphanumeric string whose length is uniform in
// [minLen, maxLen].
func RandStr(minLen, maxLen int) string {
	n := int(RandomInt(int64(minLen), int64(maxLen)))
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[rand.Intn(len(alphanumeric))]
	}
	return string(b)
}

// RandDouble returns a uniform value in [min, max] rounded to the given
// number of decimal digits.
func RandDouble(min, max float64, precision int) float64 {
	v := min + rand.Float64()*(max-min)
	return Round(v, precision)
}

func Round(v float64, precision int) float64 {
	scale := math.Pow10(precision)
	return math.Round(v*scale) / scale
}

// RandZip returns a zip code made of four random digits followed by "11111".
func RandZip() string {
	var buf bytes.Buffer
	n := rand.Intn(10000)
	buf.WriteByte(byte('0' + n/1000))
	buf.WriteByte(byte('0' + n/100%10))
	buf.WriteByte(byte('0' + n/10%10))
	buf.WriteByte(byte('0' + n%10))
	buf.WriteString("11111")
	return buf.String()
}

var (
	syllables = []string{
		"BAR", "OUGHT", "ABLE", "PRI", "PRES",
		"ESE", "ANTI", "CALLY", "ATION", "EING",
	}
)

// LastName maps n in [0, 999] to a customer last name by concatenating the
// syllables indexed by its hundreds, tens and units digits.
func LastName(n int64) string {
	return syllables[n/100%10] + syllables[n/10%10] + syllables[n%10]
}

// RandLastName draws a last name through the last name NURand instance.
func RandLastName() string {
	return LastName(LastNameNURand.NextInt())
}
