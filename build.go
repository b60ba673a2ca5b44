package pkgsmith

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// BuildOptions carries the directory layout and behavior switches for a
// full build.
type BuildOptions struct {
	// SrcDir is the directory below which working copies are kept, one per
	// pkgname.
	SrcDir string
	// PkgRoot is the install root the recipe's files are staged into.
	PkgRoot string
	// NoLock skips the working-copy build lock.
	NoLock bool
	// Progress, if set, is called for every file as it is staged.
	Progress func(StageStatus)
}

// StartLogging directs the log output to both stdout and the given logfile.
func StartLogging(logFilename string) *os.File {
	logfile, err := os.OpenFile(logFilename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal(err)
	}
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(io.MultiWriter(os.Stdout, logfile))
	return logfile
}

// Build runs the full pipeline for a recipe: ensure the working copy is
// checked out and current, resolve the package version from its tag
// history, stage the recipe's files into the package root, and write the
// package metadata. It returns the resolved version.
//
// Unless opts.NoLock is set, the build holds a file lock next to the
// working copy so that two builds of the same recipe cannot race on it.
// Cancelling ctx during staging rolls back the files staged so far.
func Build(ctx context.Context, recipe *Recipe, opts BuildOptions) (string, error) {
	if err := os.MkdirAll(opts.SrcDir, 0755); err != nil {
		return "", fmt.Errorf("unable to create source dir %s: %w", opts.SrcDir, err)
	}
	workingCopy := recipe.WorkingCopyDir(opts.SrcDir)
	if !opts.NoLock {
		buildLock := flock.New(workingCopy + ".lock")
		locked, err := buildLock.TryLock()
		if err != nil {
			return "", fmt.Errorf("unable to take build lock %s: %w", buildLock.Path(), err)
		}
		if !locked {
			return "", fmt.Errorf("another build holds %s", buildLock.Path())
		}
		defer buildLock.Unlock()
	}

	if err := EnsureCheckout(ctx, workingCopy, recipe.Source); err != nil {
		return "", err
	}
	version, err := ResolveVersion(workingCopy)
	if err != nil {
		return "", err
	}
	log.Printf("Resolved %s version %s", recipe.Pkgname, version)

	stager, err := StagerNew(recipe, workingCopy, opts.PkgRoot)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(opts.PkgRoot)), 0755); err != nil {
		return "", fmt.Errorf("unable to create package root parent: %w", err)
	}
	if err := stager.CheckPkgRoot(opts.PkgRoot); err != nil {
		return "", err
	}
	if opts.Progress != nil {
		stager.SetProgressFunction(opts.Progress)
	}

	stager.StartStage()
	staged := make(chan error, 1)
	go func() { staged <- stager.Err() }()
	select {
	case err := <-staged:
		if err != nil {
			return "", err
		}
	case <-ctx.Done():
		stager.Rollback()
		<-staged
		return "", ctx.Err()
	}

	if err := WritePkgInfo(recipe, opts.PkgRoot, version, stager.Size()); err != nil {
		return "", err
	}
	log.Printf("Staged %s (%s) into %s", recipe.Pkgname, stager.SizeString(), opts.PkgRoot)
	return version, nil
}
