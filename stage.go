package pkgsmith

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"
)

const (
	KB int64 = 1 << (10 * (iota + 1))
	MB
	GB
	TB
)

// ErrStageAborted is returned by Stage when the stager was aborted (and
// possibly rolled back) before all files were copied.
var ErrStageAborted = errors.New("staging aborted")

type (
	// StageFile pairs a file in the working copy with its destination below
	// the package root, plus a flag indicating whether the file has been
	// copied to the target or not.
	StageFile struct {
		Source string
		Target string
		Size   int64
		staged bool
	}
	// StageStatus is a message struct that gets passed around at various
	// times in the staging process. All fields are optional and contain the
	// current file, whether the stager as a whole is finished or not, or
	// whether it's been aborted and rolled back.
	StageStatus struct {
		File    *StageFile
		Done    bool
		Aborted bool
	}
	// Stager represents a recipe's set of files and the package root they
	// are copied into. It contains information about the files, sizes, and
	// status (done or not), as well as 3 different message channels, for
	// each abort and its confirmation as well as status updates.
	//
	// A Stager runs at most once; create a new one for a rebuild.
	Stager struct {
		PkgRoot             string
		Done                bool
		totalSize           int64
		stagedSize          int64
		err                 error
		files               []*StageFile
		statusChannel       chan StageStatus
		abortChannel        chan bool
		abortConfirmChannel chan bool
		doneChannel         chan struct{}
		actionLock          sync.Mutex
		progressFunction    func(StageStatus)
	}
)

// StagerNew creates a Stager for a recipe, resolving the recipe's install
// entries against the working copy. Every source file must exist up front;
// a missing file fails here, before anything is copied.
func StagerNew(recipe *Recipe, workingCopy, pkgRoot string) (*Stager, error) {
	stager := &Stager{
		PkgRoot:             pkgRoot,
		statusChannel:       make(chan StageStatus, 1),
		abortChannel:        make(chan bool, 1),
		abortConfirmChannel: make(chan bool, 1),
		doneChannel:         make(chan struct{}),
		progressFunction:    func(status StageStatus) {},
	}
	for _, entry := range recipe.Install {
		source := filepath.Join(workingCopy, filepath.FromSlash(entry.From))
		info, err := os.Stat(source)
		if err != nil {
			return nil, fmt.Errorf("missing source file %s: %w", source, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("source %s is a directory, not a file", source)
		}
		stager.files = append(stager.files, &StageFile{
			Source: source,
			Target: filepath.Join(pkgRoot, filepath.FromSlash(entry.To)),
			Size:   info.Size(),
		})
		stager.totalSize += info.Size()
	}
	return stager, nil
}

// StartStage runs the stager in a separate goroutine and returns
// immediately. Use Status() to get updates about the progress and Err() to
// collect the result once the run is over.
func (s *Stager) StartStage() { go s.Stage() }

// Stage copies all files into the package root, creating intermediate
// directories as needed. Copies are byte-for-byte; existing targets from a
// previous build are overwritten. Returns ErrStageAborted if Abort() or
// Rollback() interrupted the run.
func (s *Stager) Stage() (err error) {
	defer func() {
		s.err = err
		close(s.doneChannel)
	}()
	s.actionLock.Lock()
	defer s.actionLock.Unlock()
	for _, file := range s.files {
		select {
		case <-s.abortChannel:
			s.abortConfirmChannel <- true
			return ErrStageAborted
		default:
			status := StageStatus{File: file}
			s.setStatus(status)
			s.progressFunction(status)
			if err := copyFile(file.Source, file.Target); err != nil {
				return err
			}
			s.stagedSize += file.Size
			file.staged = true
			s.setStatus(StageStatus{File: file})
		}
	}
	s.Done = true
	s.setStatus(StageStatus{Done: true})
	return nil
}

// Abort can be called to stop the stager. The stager will usually not stop
// immediately, but finish copying the current file.
//
// Use Rollback() instead of Abort() if you want the files staged so far
// deleted as well.
//
// Abort returns once the staging run has stopped, and immediately when it
// has already finished on its own.
func (s *Stager) Abort() {
	select {
	case <-s.doneChannel:
		return
	default:
	}
	// The channel is buffered, so this send cannot hang even when the run
	// finishes before picking it up.
	s.abortChannel <- true
	select {
	case <-s.abortConfirmChannel:
	case <-s.doneChannel:
	}
}

// Rollback aborts the stager and deletes the files it has staged so far, in
// reverse order. It will not touch files it didn't write itself, and leaves
// created directories in place rather than guessing which ones it owns.
//
// Rollback implicitly calls Abort().
func (s *Stager) Rollback() {
	s.Abort()
	s.actionLock.Lock()
	defer s.actionLock.Unlock()
	for p := len(s.files) - 1; p >= 0; p-- {
		if s.files[p].staged {
			err := os.Remove(s.files[p].Target)
			if err != nil {
				log.Printf("Error deleting %s", s.files[p].Target)
			}
			s.files[p].staged = false
			s.stagedSize -= s.files[p].Size
			s.setStatus(StageStatus{File: s.files[p]})
		}
	}
	s.Done = true
	s.setStatus(StageStatus{Aborted: true})
}

// setStatus is a non-blocking write to the status channel. If no-one is
// listening through Status() then it will simply do nothing and return.
func (s *Stager) setStatus(status StageStatus) {
	select {
	case s.statusChannel <- status:
	default:
	}
}

// Status returns the current stager status as a StageStatus object.
func (s *Stager) Status() StageStatus {
	select {
	case status := <-s.statusChannel:
		return status
	case <-time.After(1 * time.Second):
		return StageStatus{}
	}
}

// CheckPkgRoot checks that the package root can be staged into: its parent
// must be an existing, writable directory with enough free disk space for
// the recipe's files.
func (s *Stager) CheckPkgRoot(dirName string) error {
	parent := path.Dir(dirName)
	parentInfo, err := os.Stat(parent)
	if err != nil || !parentInfo.IsDir() {
		return fmt.Errorf("package root parent is not a directory: '%s'", parent)
	}
	if !osFileWriteAccess(parent) {
		return fmt.Errorf("package root is not writeable: '%s' -> '%s'", parent, parentInfo.Mode().Perm())
	}
	if space := osDiskSpace(parent); space >= 0 && space < s.totalSize {
		return fmt.Errorf("not enough space below '%s': %d of %d bytes free", parent, space, s.totalSize)
	}
	s.PkgRoot = dirName
	return nil
}

// NextFile returns the file that the stager will copy next, or the one that
// is currently being copied.
func (s *Stager) NextFile() *StageFile {
	for _, file := range s.files {
		if !file.staged {
			return file
		}
	}
	return nil
}

func (s *Stager) SetProgressFunction(function func(StageStatus)) {
	s.progressFunction = function
}

// Progress returns the size ratio between already staged files and all
// files. The result is a float between 0.0 and 1.0, inclusive.
func (s *Stager) Progress() float64 {
	if s.totalSize == 0 {
		return 1.0
	}
	return float64(s.stagedSize) / float64(s.totalSize)
}

// Size returns the bytes that have been copied so far or should be copied
// in total.
func (s *Stager) Size() int64 {
	if s.Done {
		return s.totalSize
	}
	return s.stagedSize
}

// SizeString returns a human-readable version of Size(), appending a size
// suffix, as needed.
func (s *Stager) SizeString() string {
	size := s.Size()
	switch {
	case size < KB:
		return fmt.Sprintf("%dB", size)
	case size < MB:
		return fmt.Sprintf("%.2fKB", float64(size)/float64(KB))
	case size < GB:
		return fmt.Sprintf("%.2fMB", float64(size)/float64(MB))
	case size < TB:
		return fmt.Sprintf("%.2fGB", float64(size)/float64(GB))
	default:
		return fmt.Sprintf("%.2fTB", float64(size)/float64(TB))
	}
}

// WaitForDone returns only after the staging run is over, whether it
// finished, failed, or was aborted.
func (s *Stager) WaitForDone() {
	<-s.doneChannel
}

// Err blocks until the staging run is over and returns its result: nil on
// success, ErrStageAborted after an abort, or the copy error that stopped
// the run.
func (s *Stager) Err() error {
	s.WaitForDone()
	return s.err
}

// copyFile copies source to target byte-for-byte, creating intermediate
// directories and carrying over the source's permission bits.
func copyFile(source, target string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("missing source file %s: %w", source, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("unable to create directory for %s: %w", target, err)
	}
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", source, err)
	}
	defer in.Close()
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("unable to write %s: %w", target, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("unable to copy %s to %s: %w", source, target, err)
	}
	return out.Close()
}
