package dice

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Spec
		wantErr  error
	}{
		{name: "single die", input: "d20", expected: Spec{Count: 1, Faces: 20}},
		{name: "count and faces", input: "3d6", expected: Spec{Count: 3, Faces: 6}},
		{name: "positive modifier", input: "2d8+3", expected: Spec{Count: 2, Faces: 8, Modifier: 3}},
		{name: "negative modifier", input: "1d4-1", expected: Spec{Count: 1, Faces: 4, Modifier: -1}},
		{name: "uppercase and whitespace", input: "  2D6+1 ", expected: Spec{Count: 2, Faces: 6, Modifier: 1}},
		{name: "bounds inclusive", input: "100d1000", expected: Spec{Count: 100, Faces: 1000}},
		{name: "one face", input: "1d1", expected: Spec{Count: 1, Faces: 1}},
		{name: "empty", input: "", wantErr: ErrInvalidNotation},
		{name: "missing faces", input: "2d", wantErr: ErrInvalidNotation},
		{name: "trailing garbage", input: "2d6x", wantErr: ErrInvalidNotation},
		{name: "leading garbage", input: "roll 2d6", wantErr: ErrInvalidNotation},
		{name: "two modifiers", input: "2d6+1+1", wantErr: ErrInvalidNotation},
		{name: "inner whitespace", input: "2 d6", wantErr: ErrInvalidNotation},
		{name: "zero count", input: "0d6", wantErr: ErrCountOutOfRange},
		{name: "too many dice", input: "101d6", wantErr: ErrCountOutOfRange},
		{name: "huge count", input: "99999999999999999999d6", wantErr: ErrCountOutOfRange},
		{name: "zero faces", input: "1d0", wantErr: ErrFacesOutOfRange},
		{name: "too many faces", input: "1d1001", wantErr: ErrFacesOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, spec)
		})
	}
}

func TestSpec_Notation(t *testing.T) {
	assert.Equal(t, "1d20", Spec{Count: 1, Faces: 20}.Notation())
	assert.Equal(t, "2d6+3", Spec{Count: 2, Faces: 6, Modifier: 3}.Notation())
	assert.Equal(t, "4d4-2", Spec{Count: 4, Faces: 4, Modifier: -2}.Notation())
}

func TestRoller_Roll(t *testing.T) {
	roller := NewRoller(rand.New(rand.NewSource(42)))

	result, err := roller.Roll("3d6+2")
	require.NoError(t, err)

	assert.Equal(t, "3d6+2", result.Notation)
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, 6, result.Faces)
	assert.Equal(t, 2, result.Modifier)
	require.Len(t, result.Rolls, 3)

	sum := 0
	for _, r := range result.Rolls {
		assert.GreaterOrEqual(t, r, 1)
		assert.LessOrEqual(t, r, 6)
		sum += r
	}
	assert.Equal(t, sum+2, result.Total)
}

func TestRoller_RollInvalid(t *testing.T) {
	roller := NewRoller(rand.New(rand.NewSource(1)))

	_, err := roller.Roll("banana")
	require.ErrorIs(t, err, ErrInvalidNotation)
}

func TestRoller_Deterministic(t *testing.T) {
	a := NewRoller(rand.New(rand.NewSource(7)))
	b := NewRoller(rand.New(rand.NewSource(7)))

	for i := 0; i < 10; i++ {
		ra, err := a.Roll("4d20-1")
		require.NoError(t, err)
		rb, err := b.Roll("4d20-1")
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestRoller_SingleFaceIsConstant(t *testing.T) {
	roller := NewRoller(rand.New(rand.NewSource(3)))

	result, err := roller.Roll("5d1-5")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1, 1}, result.Rolls)
	assert.Equal(t, 0, result.Total)
}

func TestRoller_Distribution(t *testing.T) {
	roller := NewRoller(rand.New(rand.NewSource(99)))

	seen := make(map[int]int)
	for i := 0; i < 600; i++ {
		result := roller.RollSpec(Spec{Count: 1, Faces: 6})
		seen[result.Rolls[0]]++
	}

	for face := 1; face <= 6; face++ {
		assert.Positive(t, seen[face], "face %d never rolled", face)
	}
	assert.Len(t, seen, 6)
}

func TestRoller_ConcurrentUse(t *testing.T) {
	roller := NewRoller(rand.New(rand.NewSource(5)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				result, err := roller.Roll("2d10")
				assert.NoError(t, err)
				assert.Len(t, result.Rolls, 2)
			}
		}()
	}
	wg.Wait()
}

func TestNewSeededRoller(t *testing.T) {
	roller, err := NewSeededRoller()
	require.NoError(t, err)

	result, err := roller.Roll("d20")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Total, 1)
	assert.LessOrEqual(t, result.Total, 20)
}

func TestResult_Expected(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		expected float64
		above    bool
	}{
		{
			name:     "2d6 above mean",
			result:   Result{Count: 2, Faces: 6, Total: 8},
			expected: 7,
			above:    true,
		},
		{
			name:     "2d6 at mean is not above",
			result:   Result{Count: 2, Faces: 6, Total: 7},
			expected: 7,
			above:    false,
		},
		{
			name:     "modifier shifts mean",
			result:   Result{Count: 1, Faces: 20, Modifier: 5, Total: 15},
			expected: 15.5,
			above:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.result.Expected(), 0.0001)
			assert.Equal(t, tt.above, tt.result.AboveAverage())
		})
	}
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "2d6+1: [3 5] +1 = 9", Result{Notation: "2d6+1", Rolls: []int{3, 5}, Modifier: 1, Total: 9}.String())
	assert.Equal(t, "1d4-2: [1] -2 = -1", Result{Notation: "1d4-2", Rolls: []int{1}, Modifier: -2, Total: -1}.String())
	assert.Equal(t, "1d20: [17] = 17", Result{Notation: "1d20", Rolls: []int{17}, Total: 17}.String())
}
