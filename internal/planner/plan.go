package planner

// Plan is an ordered set of file operations.
type Plan struct {
	// Kind is "install" or "uninstall"
	Kind string `json:"kind"`

	// Operations is the ordered list of operations, one per patch target
	Operations []Operation `json:"operations"`

	// Conflicts is a list of detected conflicts (empty if no conflicts)
	Conflicts []Conflict `json:"conflicts"`
}

// Operation is the planned action for one file.
type Operation struct {
	// Type is one of the Op constants
	Type string `json:"type"`

	// Name is the patch name
	Name string `json:"name"`

	// Path is the absolute path of the file
	Path string `json:"path"`

	// RelPath is the path relative to the OpenCart root (for state tracking)
	RelPath string `json:"relPath"`

	// Before is the current content
	Before string `json:"-"`

	// After is the content the operation leaves behind
	After string `json:"-"`
}

// Conflict is a reason the plan should not run as-is.
type Conflict struct {
	// Path is the file the conflict was detected on
	Path string `json:"path"`

	// Reason is a human-readable explanation of the conflict
	Reason string `json:"reason"`
}

// Operation type constants
const (
	OpWrite   = "write"
	OpRestore = "restore"
	OpUnpatch = "unpatch"
	OpSkip    = "skip"
)

// Plan kinds
const (
	KindInstall   = "install"
	KindUninstall = "uninstall"
)

// NewPlan creates a new empty Plan.
func NewPlan(kind string) *Plan {
	return &Plan{
		Kind:       kind,
		Operations: []Operation{},
		Conflicts:  []Conflict{},
	}
}

// HasConflicts returns true if the plan has any conflicts.
func (p *Plan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// AddOperation adds an operation to the plan.
func (p *Plan) AddOperation(op Operation) {
	p.Operations = append(p.Operations, op)
}

// AddConflict adds a conflict to the plan.
func (p *Plan) AddConflict(conflict Conflict) {
	p.Conflicts = append(p.Conflicts, conflict)
}

// Pending returns the operations that change a file.
func (p *Plan) Pending() []Operation {
	var ops []Operation
	for _, op := range p.Operations {
		if op.Type != OpSkip {
			ops = append(ops, op)
		}
	}
	return ops
}
