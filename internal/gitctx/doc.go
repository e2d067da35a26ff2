// Package gitctx locates the enclosing git repository and reads its
// metadata.
//
// [FindRoot] is a pure filesystem walk used for config discovery, so it
// works without a git binary. [GetRepoMeta] shells out to git and is used to
// stamp check reports with the commit they were produced from.
package gitctx
