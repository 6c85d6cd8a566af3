package generator

import (
	"github.com/hhkbp2/testify/require"
	"strconv"
	"testing"
)

func TestUniformIntegerGenerator(t *testing.T) {
	lowerBound := int64(1000)
	upperBound := int64(2000)
	var g IntegerGenerator
	uig := NewUniformIntegerGenerator(lowerBound, upperBound)
	g = uig
	require.Equal(t, lowerBound-1, g.LastInt())
	total := 10
	for i := 0; i < total; i++ {
		last := g.NextInt()
		require.True(t, last >= lowerBound && last <= upperBound)
		require.Equal(t, last, g.LastInt())
		str := g.NextString()
		v, err := strconv.ParseInt(str, 0, 64)
		require.Nil(t, err)
		require.True(t, v >= lowerBound && v <= upperBound)
		require.Equal(t, str, g.LastString())
		require.Equal(t, float64(1500), g.Mean())
	}
}

func TestUniformIntegerGeneratorCoversBounds(t *testing.T) {
	g := NewUniformIntegerGenerator(5, 15)
	seen := make(map[int64]bool)
	for i := 0; i < 10000; i++ {
		v := g.NextInt()
		require.True(t, v >= 5 && v <= 15)
		seen[v] = true
	}
	require.Equal(t, 11, len(seen))
}
