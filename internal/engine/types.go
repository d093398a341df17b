package engine

// Options configures a single Pull, Push or Fetch call.
type Options struct {
	// Jobs bounds concurrent transfers, 0 means core.jobs or 4 * NumCPU
	Jobs int

	// Remote is the remote name, empty means core.remote
	Remote string

	// ShowChecksums names objects by digest instead of path in logs
	ShowChecksums bool

	// AllBranches also collects outputs recorded on every local branch
	AllBranches bool

	// AllTags also collects outputs recorded on every tag
	AllTags bool

	// WithDeps adds the dependencies of the target files
	WithDeps bool

	// Recursive allows directory targets
	Recursive bool

	// Force overwrites modified workspace files on checkout
	Force bool
}

// StatusOptions configures Status.
type StatusOptions struct {
	// Cloud compares the cache with a remote instead of the workspace
	Cloud bool

	// Remote is the remote name, empty means core.remote
	Remote string

	Jobs        int
	AllBranches bool
	AllTags     bool
	WithDeps    bool
}

// Local status values.
const (
	StatusModified   = "modified"
	StatusDeleted    = "deleted"
	StatusNotInCache = "not in cache"
)

// Cloud status values.
const (
	StatusNew     = "new"
	StatusMissing = "missing"
)

// StatusResult is the outcome of a Status call.
type StatusResult struct {
	// Cloud is set for a cache/remote comparison
	Cloud bool `json:"cloud"`

	// Remote is the compared remote (cloud mode)
	Remote string `json:"remote,omitempty"`

	// Targets lists changed target files (local mode)
	Targets []TargetStatus `json:"targets,omitempty"`

	// Objects lists objects not in sync (cloud mode)
	Objects []ObjectStatus `json:"objects,omitempty"`
}

// TargetStatus lists the changed outputs of one target file.
type TargetStatus struct {
	Target  string   `json:"target"`
	Changes []Change `json:"changes"`
}

// Change is the local status of one output.
type Change struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

// ObjectStatus is the cloud status of one object.
type ObjectStatus struct {
	// Path is the first output referencing the object
	Path   string `json:"path"`
	Digest string `json:"digest"`
	Status string `json:"status"`
}

// InSync reports whether nothing needs attention.
func (r *StatusResult) InSync() bool {
	return len(r.Targets) == 0 && len(r.Objects) == 0
}
