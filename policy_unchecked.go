//go:build refarena_unchecked

package refarena

const defaultBugPolicy = BugUnchecked
