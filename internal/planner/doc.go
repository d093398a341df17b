// Package planner handles the planning phase of transfers and checkouts.
//
// The planner turns resolved target outputs into deterministic plans before
// anything is written: which objects need to move between the cache and a
// remote, and which workspace files a checkout creates or overwrites. It
// detects conflicts so that a refused checkout leaves the workspace
// untouched.
//
// Key responsibilities:
//   - Group outputs into objects, one per digest
//   - Generate CheckoutPlan with ordered operations
//   - Detect conflicts (modified uncached files, directories in the way,
//     one path declared with two digests)
package planner
