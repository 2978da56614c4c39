package snm

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Config holds the inputs that shape one SNM computation.
type Config struct {
	// XMax is the upper end of the grid, typically the supply voltage.
	XMax float64

	// GridSize is the number of uniformly spaced grid samples over [0, XMax].
	GridSize int

	Search SearchConfig

	// ParallelLobes solves both lobes concurrently.
	ParallelLobes bool
}

// DefaultConfig returns the settings used for 1.8 V butterfly exports.
func DefaultConfig() Config {
	return Config{
		XMax:     1.8,
		GridSize: 20001,
		Search:   DefaultSearchConfig(),
	}
}

// ComputeSNM computes the static noise margin of curves a and b sampled on
// gridSize points over [0, xMax], using the default search settings.
func ComputeSNM(a, b Curve, xMax float64, gridSize int) (*Result, error) {
	cfg := DefaultConfig()
	cfg.XMax = xMax
	cfg.GridSize = gridSize
	return Compute(a, b, cfg)
}

// Compute builds the envelope for a and b and solves both lobes.
func Compute(a, b Curve, cfg Config) (*Result, error) {
	env, err := BuildEnvelope(a, b, cfg.XMax, cfg.GridSize)
	if err != nil {
		return nil, err
	}
	return Solve(env, cfg)
}

// Solve splits a prepared envelope into lobes and finds the largest square
// in each. The reported SNM is the weaker lobe.
func Solve(env *Envelope, cfg Config) (*Result, error) {
	if env.Len() < 2 {
		return nil, fmt.Errorf("%w: grid has %d samples", ErrInvalidWindow, env.Len())
	}

	split := SplitIndex(env.A, env.B)
	leftLobe, rightLobe := SplitLobes(env.Len(), split)

	res := &Result{Split: split, LeftLobe: leftLobe, RightLobe: rightLobe}

	solveLeft := func() error {
		x, u, l := env.Slice(leftLobe)
		side, p, err := MaxSquare(x, u, l, cfg.Search)
		if err != nil {
			return fmt.Errorf("left lobe: %w", err)
		}
		res.Left, res.LeftPlacement = side, p
		return nil
	}
	solveRight := func() error {
		x, u, l := env.Slice(rightLobe)
		side, p, err := MaxSquare(x, u, l, cfg.Search)
		if err != nil {
			return fmt.Errorf("right lobe: %w", err)
		}
		res.Right, res.RightPlacement = side, p
		return nil
	}

	if cfg.ParallelLobes {
		var g errgroup.Group
		g.Go(solveLeft)
		g.Go(solveRight)
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		if err := solveLeft(); err != nil {
			return nil, err
		}
		if err := solveRight(); err != nil {
			return nil, err
		}
	}

	res.SNM = math.Min(res.Left, res.Right)
	return res, nil
}
