package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rafabd1/hashes/internal/algorithm"
	"github.com/rafabd1/hashes/internal/progress"
	"github.com/rafabd1/hashes/internal/utils"
)

func TestPreBuiltListsCollide(t *testing.T) {
	cases := []struct {
		name string
		size int
	}{
		{"djbx33a", 19683},
		{"djbx31a", 19683},
		{"djbx33x", 1024},
		{"v8", 2048},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alg, err := algorithm.Lookup(tc.name)
			require.NoError(t, err)

			gen, err := PreBuiltFor(alg)
			require.NoError(t, err)
			require.Equal(t, tc.size, gen.Size())

			keys, err := gen.Generate(tc.size+100, nil)
			require.NoError(t, err)
			require.Len(t, keys, tc.size)
			require.NoError(t, Verify(alg, keys))
		})
	}
}

func TestPreBuiltIsIdempotent(t *testing.T) {
	gen, err := PreBuiltFor(algorithm.V8())
	require.NoError(t, err)

	first, err := gen.Generate(500, nil)
	require.NoError(t, err)
	second, err := gen.Generate(500, nil)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, first, 500)

	// callers own the returned slice
	first[0] = "mutated"
	third, err := gen.Generate(500, nil)
	require.NoError(t, err)
	require.Equal(t, second, third)
}

func TestPreBuiltKeepsSpaces(t *testing.T) {
	gen, err := PreBuiltFor(algorithm.V8())
	require.NoError(t, err)
	keys, err := gen.Generate(gen.Size(), nil)
	require.NoError(t, err)
	for _, k := range keys {
		require.Len(t, k, KeyLength)
	}
}

func TestPreBuiltUnknown(t *testing.T) {
	_, err := PreBuiltFor(algorithm.NewV8(42))
	require.ErrorIs(t, err, ErrNoPreBuiltKeys)
}

func TestClosedForm(t *testing.T) {
	for _, alg := range []algorithm.HashAlgorithm{algorithm.DJBX33A(), algorithm.DJBX31A()} {
		gen, err := ClosedFormFor(alg)
		require.NoError(t, err)

		for _, count := range []int{1, 2, 3, 4, 9, 10, 100, 5000} {
			var updates []int
			keys, err := gen.Generate(count, progress.Func(func(i int) { updates = append(updates, i) }))
			require.NoError(t, err)
			require.Len(t, keys, count)
			require.Len(t, updates, count)
			require.NoError(t, Verify(alg, keys), "%s count=%d", alg.Name(), count)
			for _, k := range keys {
				require.Len(t, k, len(keys[0]))
			}
		}
	}

	gen, err := ClosedFormFor(algorithm.DJBX31A())
	require.NoError(t, err)
	keys, err := gen.Generate(4, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"AaAa", "AaBB", "AaC#", "BBAa"}, keys)
}

func TestNewClosedFormRejectsBadBlocks(t *testing.T) {
	_, err := NewClosedForm(algorithm.DJBX31A(), "Aa")
	require.ErrorIs(t, err, ErrBadBlocks)
	_, err = NewClosedForm(algorithm.DJBX31A(), "Aa", "BBB")
	require.ErrorIs(t, err, ErrBadBlocks)
	_, err = NewClosedForm(algorithm.DJBX31A(), "Aa", "Ab")
	require.ErrorIs(t, err, ErrBadBlocks)
	_, err = ClosedFormFor(algorithm.V8())
	require.ErrorIs(t, err, ErrBadBlocks)
}

func TestInvalidCount(t *testing.T) {
	pb, err := PreBuiltFor(algorithm.DJBX33A())
	require.NoError(t, err)
	cf, err := ClosedFormFor(algorithm.DJBX33A())
	require.NoError(t, err)
	m, err := NewMITM(algorithm.V8(), "seed")
	require.NoError(t, err)

	for _, gen := range []Generator{pb, cf, m} {
		for _, count := range []int{0, -1} {
			_, err := gen.Generate(count, nil)
			require.ErrorIs(t, err, ErrInvalidKeyCount)
		}
	}
}

func TestNewSelectsStrategy(t *testing.T) {
	logger := utils.NewNopLogger()

	gen, err := New(Settings{Algorithm: "php"}, logger)
	require.NoError(t, err)
	require.IsType(t, &PreBuilt{}, gen)

	gen, err = New(Settings{Algorithm: "java", Fresh: true}, logger)
	require.NoError(t, err)
	require.IsType(t, &ClosedForm{}, gen)

	gen, err = New(Settings{Algorithm: "asp", Fresh: true, Seed: "s", Workers: 2}, logger)
	require.NoError(t, err)
	require.IsType(t, &MITM{}, gen)
	require.Equal(t, "DJBX33X", gen.Algorithm().Name())

	_, err = New(Settings{Algorithm: "v8", Fresh: true}, logger)
	require.ErrorIs(t, err, ErrEmptySeed)

	_, err = New(Settings{Algorithm: "v8", Fresh: true, Seed: "s", Workers: -3}, logger)
	require.ErrorIs(t, err, ErrInvalidWorkers)

	_, err = New(Settings{Algorithm: "crc32"}, logger)
	require.ErrorIs(t, err, algorithm.ErrUnknownAlgorithm)
}

func TestVerify(t *testing.T) {
	alg := algorithm.DJBX31A()
	require.NoError(t, Verify(alg, nil))
	require.NoError(t, Verify(alg, []string{"Aa", "BB"}))
	require.ErrorIs(t, Verify(alg, []string{"Aa", "Aa"}), ErrNotColliding)
	require.ErrorIs(t, Verify(alg, []string{"Aa", "Ab"}), ErrNotColliding)
}
