package patcher

import "errors"

// Action describes what happened to one file.
type Action string

// Actions recorded in an Outcome.
const (
	ActionPatched        Action = "patched"
	ActionAlreadyApplied Action = "already applied"
	ActionRestored       Action = "restored from backup"
	ActionUnpatched      Action = "unpatched"
	ActionUnchanged      Action = "unchanged"
)

// Outcome is the result of applying or removing one patch.
type Outcome struct {
	// Name is the patch name
	Name string

	// Path is the target file
	Path string

	// Action is what was done; empty when Err is set
	Action Action

	// Changed reports whether the file was written
	Changed bool

	// Content is what was written by a transform (nil for restores and no-ops)
	Content []byte

	// Err is the failure for this file, wrapping ErrNotFound or ErrIOFailure
	Err error
}

// Report collects per-file outcomes in patch order.
type Report struct {
	Outcomes []Outcome
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Changed returns the outcomes that wrote a file.
func (r *Report) Changed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Changed {
			out = append(out, o)
		}
	}
	return out
}

// Failed reports whether any file failed.
func (r *Report) Failed() bool {
	return r.Err() != nil
}

// Err joins every per-file error, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}
