package planner

import (
	"github.com/opencontainers/go-digest"

	"github.com/danieljhkim/dsync/internal/targets"
)

// Object is one content object and the outputs that reference it.
type Object struct {
	Digest digest.Digest
	Size   int64

	// Paths are the repository-relative outputs with this content
	Paths []string
}

// Label returns the digest when showChecksums is set, else the first path.
func (o Object) Label(showChecksums bool) string {
	if showChecksums || len(o.Paths) == 0 {
		return o.Digest.String()
	}
	return o.Paths[0]
}

// Objects groups outputs by digest, in first-seen order.
func Objects(outputs []targets.Output) []Object {
	index := make(map[digest.Digest]int, len(outputs))
	var objects []Object
	for _, out := range outputs {
		if i, ok := index[out.Digest]; ok {
			if !containsPath(objects[i].Paths, out.Path) {
				objects[i].Paths = append(objects[i].Paths, out.Path)
			}
			continue
		}
		index[out.Digest] = len(objects)
		objects = append(objects, Object{Digest: out.Digest, Size: out.Size, Paths: []string{out.Path}})
	}
	return objects
}

func containsPath(paths []string, p string) bool {
	for _, existing := range paths {
		if existing == p {
			return true
		}
	}
	return false
}

// TransferPlan lists the objects to copy from a source to a destination.
type TransferPlan struct {
	// Transfers are present at the source and missing at the destination
	Transfers []Object

	// Missing are absent from the source
	Missing []Object

	// Present counts objects already at the destination
	Present int
}

// NewTransferPlan creates an empty TransferPlan.
func NewTransferPlan() *TransferPlan {
	return &TransferPlan{
		Transfers: []Object{},
		Missing:   []Object{},
	}
}

// Bytes returns the total size of the planned transfers.
func (p *TransferPlan) Bytes() int64 {
	var n int64
	for _, obj := range p.Transfers {
		n += obj.Size
	}
	return n
}

// CheckoutPlan represents the workspace writes of a checkout.
type CheckoutPlan struct {
	// Operations is the ordered list of writes to execute
	Operations []Operation

	// Conflicts is a list of detected conflicts (empty if no conflicts)
	Conflicts []Conflict

	// UpToDate counts outputs whose workspace file already matches
	UpToDate int
}

// Operation represents a single workspace write.
type Operation struct {
	// Type is the operation type: "create" or "overwrite"
	Type string

	// RelPath is the repository-relative slash path
	RelPath string

	// DestPath is the absolute destination path
	DestPath string

	// Digest is the content to write
	Digest digest.Digest

	Size int64
}

// Conflict represents a conflict detected during planning.
type Conflict struct {
	// Path is the repository-relative path where the conflict was detected
	Path string

	// Reason is a human-readable explanation of the conflict
	Reason string

	// Existing describes what currently exists at the path
	Existing string

	// Incoming describes what the plan wants to write
	Incoming string
}

// Operation type constants
const (
	OpCreate    = "create"
	OpOverwrite = "overwrite"
)

// NewCheckoutPlan creates a new empty CheckoutPlan.
func NewCheckoutPlan() *CheckoutPlan {
	return &CheckoutPlan{
		Operations: []Operation{},
		Conflicts:  []Conflict{},
	}
}

// HasConflicts returns true if the plan has any conflicts.
func (p *CheckoutPlan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// AddOperation adds an operation to the plan.
func (p *CheckoutPlan) AddOperation(op Operation) {
	p.Operations = append(p.Operations, op)
}

// AddConflict adds a conflict to the plan.
func (p *CheckoutPlan) AddConflict(conflict Conflict) {
	p.Conflicts = append(p.Conflicts, conflict)
}

// ConflictPaths returns the paths of all conflicts.
func (p *CheckoutPlan) ConflictPaths() []string {
	paths := make([]string, len(p.Conflicts))
	for i, c := range p.Conflicts {
		paths[i] = c.Path
	}
	return paths
}
