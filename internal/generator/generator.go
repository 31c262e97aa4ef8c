// Package generator produces personalized checklists from a company profile.
package generator

import (
	"context"
	"errors"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/profile"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

// ErrGeneration is the single failure mode of checklist generation.
// Callers get no structured taxonomy beyond "generation failed"; the
// wrapped cause is for diagnostics only.
var ErrGeneration = errors.New("checklist generation failed")

// Generator produces an ordered task list for a company profile.
type Generator interface {
	Generate(ctx context.Context, p profile.Profile) ([]task.Task, error)
}

// Func adapts a plain function to the Generator interface.
type Func func(ctx context.Context, p profile.Profile) ([]task.Task, error)

// Generate implements Generator.
func (f Func) Generate(ctx context.Context, p profile.Profile) ([]task.Task, error) {
	return f(ctx, p)
}
