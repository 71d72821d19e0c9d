// Package parallel runs independent jobs, such as checking many schema files,
// with bounded concurrency. Results come back in submission order.
package parallel
