// A small recipe-driven package build tool.
//
// pkgsmith reads a package recipe (a YAML manifest naming a remote git
// source, package metadata, and a set of files to install), ensures a
// local working copy of the source exists, derives a package version from
// the repository's tag history, and stages the recipe's files into a
// package root for a package manager to pick up.
//
// See the README.md for usage info and the recipe format.
package pkgsmith
