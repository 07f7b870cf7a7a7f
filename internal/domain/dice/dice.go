// Package dice parses standard dice notation and rolls it.
//
// # Notation
//
// Notation has the form [count]d<faces>[+|-modifier], for example "d20",
// "3d6" or "2d8-1". Matching is case-insensitive and surrounding whitespace
// is ignored; anything else around the expression is rejected.
//
// # Limits
//
// Count must be in [1, 100] and faces in [1, 1000]. A missing count means 1
// and a missing modifier means 0.
//
// # Determinism
//
// A Roller draws from the *rand.Rand it was built with, so a Roller built
// from a fixed seed always yields the same sequence of results.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

const (
	// MinCount is the smallest number of dice per roll.
	MinCount = 1
	// MaxCount is the largest number of dice per roll.
	MaxCount = 100
	// MinFaces is the smallest die.
	MinFaces = 1
	// MaxFaces is the largest die.
	MaxFaces = 1000
)

var (
	// ErrInvalidNotation indicates the input does not match the dice grammar.
	ErrInvalidNotation = errors.New("invalid dice notation")
	// ErrCountOutOfRange indicates a dice count outside [MinCount, MaxCount].
	ErrCountOutOfRange = errors.New("dice count out of range")
	// ErrFacesOutOfRange indicates a face count outside [MinFaces, MaxFaces].
	ErrFacesOutOfRange = errors.New("dice faces out of range")
)

var notationPattern = regexp.MustCompile(`^(\d+)?d(\d+)([+-]\d+)?$`)

// Spec is a parsed dice expression.
type Spec struct {
	Count    int
	Faces    int
	Modifier int
}

// Result is the outcome of one roll.
type Result struct {
	Notation string
	Count    int
	Faces    int
	Rolls    []int
	Modifier int
	Total    int
}

// Expected returns the mean total for the rolled expression.
func (r Result) Expected() float64 {
	return float64(r.Count)*float64(r.Faces+1)/2 + float64(r.Modifier)
}

// AboveAverage reports whether the total beat the expected mean.
func (r Result) AboveAverage() bool {
	return float64(r.Total) > r.Expected()
}

// String formats the result as "2d6+1: [3 5] +1 = 9".
func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", r.Notation, r.Rolls)
	if r.Modifier > 0 {
		fmt.Fprintf(&b, " +%d", r.Modifier)
	} else if r.Modifier < 0 {
		fmt.Fprintf(&b, " -%d", -r.Modifier)
	}
	fmt.Fprintf(&b, " = %d", r.Total)
	return b.String()
}

// Parse validates notation and returns its spec.
func Parse(notation string) (Spec, error) {
	m := notationPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(notation)))
	if m == nil {
		return Spec{}, fmt.Errorf("%w: %q", ErrInvalidNotation, notation)
	}

	spec := Spec{Count: 1}
	if m[1] != "" {
		count, err := strconv.Atoi(m[1])
		if err != nil || count < MinCount || count > MaxCount {
			return Spec{}, fmt.Errorf("%w: %s (must be %d-%d)", ErrCountOutOfRange, m[1], MinCount, MaxCount)
		}
		spec.Count = count
	}

	faces, err := strconv.Atoi(m[2])
	if err != nil || faces < MinFaces || faces > MaxFaces {
		return Spec{}, fmt.Errorf("%w: %s (must be %d-%d)", ErrFacesOutOfRange, m[2], MinFaces, MaxFaces)
	}
	spec.Faces = faces

	if m[3] != "" {
		modifier, err := strconv.Atoi(m[3])
		if err != nil {
			return Spec{}, fmt.Errorf("%w: modifier %s", ErrInvalidNotation, m[3])
		}
		spec.Modifier = modifier
	}

	return spec, nil
}

// Notation formats the spec in canonical form.
func (s Spec) Notation() string {
	switch {
	case s.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", s.Count, s.Faces, s.Modifier)
	case s.Modifier < 0:
		return fmt.Sprintf("%dd%d%d", s.Count, s.Faces, s.Modifier)
	default:
		return fmt.Sprintf("%dd%d", s.Count, s.Faces)
	}
}

// Roller rolls dice from a shared random source. It is safe for concurrent use.
type Roller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller creates a Roller drawing from rng.
func NewRoller(rng *rand.Rand) *Roller {
	return &Roller{rng: rng}
}

// NewSeededRoller creates a Roller seeded from crypto/rand.
func NewSeededRoller() (*Roller, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewRoller(rand.New(rand.NewSource(seed))), nil
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Roll parses notation and rolls it.
func (r *Roller) Roll(notation string) (Result, error) {
	spec, err := Parse(notation)
	if err != nil {
		return Result{}, err
	}
	return r.RollSpec(spec), nil
}

// RollSpec rolls an already validated spec.
func (r *Roller) RollSpec(spec Spec) Result {
	rolls := make([]int, spec.Count)
	total := 0

	r.mu.Lock()
	for i := range rolls {
		rolls[i] = rollDie(r.rng, spec.Faces)
		total += rolls[i]
	}
	r.mu.Unlock()

	return Result{
		Notation: spec.Notation(),
		Count:    spec.Count,
		Faces:    spec.Faces,
		Rolls:    rolls,
		Modifier: spec.Modifier,
		Total:    total + spec.Modifier,
	}
}

// rollDie rolls a single die with the provided number of faces.
func rollDie(rng *rand.Rand, faces int) int {
	return rng.Intn(faces) + 1
}
