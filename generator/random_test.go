package generator

import (
	"github.com/hhkbp2/testify/require"
	"strings"
	"testing"
)

func TestLastName(t *testing.T) {
	require.Equal(t, "PRICALLYOUGHT", LastName(371))
	require.Equal(t, "BARPRESBAR", LastName(40))
	require.Equal(t, "BARBARBAR", LastName(0))
	require.Equal(t, "EINGEINGEING", LastName(999))
}

func TestRandLastName(t *testing.T) {
	for i := 0; i < 1000; i++ {
		name := RandLastName()
		require.True(t, len(name) >= 9 && len(name) <= 15)
		require.Equal(t, strings.ToUpper(name), name)
	}
}

func TestRandStr(t *testing.T) {
	for i := 0; i < 1000; i++ {
		s := RandStr(8, 16)
		require.True(t, len(s) >= 8 && len(s) <= 16)
		for _, c := range s {
			require.True(t, strings.ContainsRune(alphanumeric, c))
		}
	}
	require.Equal(t, 2, len(RandStr(2, 2)))
}

func TestRandDouble(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := RandDouble(0.01, 9999.99, 2)
		require.True(t, v >= 0.01 && v <= 9999.99)
		require.InDelta(t, v, Round(v, 2), 1e-9)
		d := RandDouble(0, 0.5, 4)
		require.True(t, d >= 0 && d <= 0.5)
	}
	require.Equal(t, 1.23, Round(1.2345, 2))
}

func TestRandZip(t *testing.T) {
	for i := 0; i < 100; i++ {
		z := RandZip()
		require.Equal(t, 9, len(z))
		require.True(t, strings.HasSuffix(z, "11111"))
	}
}

func TestPerm(t *testing.T) {
	p := Perm(3000)
	require.Equal(t, 3000, len(p))
	seen := make(map[int64]bool)
	for _, v := range p {
		require.True(t, v >= 1 && v <= 3000)
		seen[v] = true
	}
	require.Equal(t, 3000, len(seen))
}
