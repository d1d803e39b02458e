//go:build !refarena_bugpanic && !refarena_unchecked

package refarena

const defaultBugPolicy = BugReturn
