// Package lock keeps a single writer per data directory through a PID file.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
	nowFunc         = time.Now
)

// ErrLocked is returned by Acquire while another live process holds the lock.
var ErrLocked = errors.New("data directory is locked by another salonlux process")

// Holder describes the process recorded in a lock file.
type Holder struct {
	PID        int
	Executable string
	Since      time.Time
}

// Status is the result of Inspect.
type Status struct {
	Path      string
	Present   bool
	Malformed bool
	Live      bool
	Holder    Holder
}

// Lock is a held lock file.
type Lock struct {
	path string
	pid  int
}

// Path returns the lock file location for dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.LockfileName)
}

// Acquire creates the lock file in dir. A file left by a dead process, or one
// that cannot be parsed, is replaced.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}
	path := Path(dir)
	pid := getpidFunc()

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			_, werr := f.WriteString(encode(Holder{PID: pid, Executable: executableOf(pid), Since: nowFunc()}))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, errors.Wrap(errors.CombineErrors(werr, cerr), "failed to write lock file")
			}
			logger.Debug("Lock acquired", "path", path, "pid", pid)
			return &Lock{path: path, pid: pid}, nil
		}
		if !os.IsExist(err) {
			return nil, errors.Wrap(err, "failed to create lock file")
		}

		status, err := Inspect(dir)
		if err != nil {
			return nil, err
		}
		if status.Live {
			return nil, errors.WithHint(
				errors.Wrapf(ErrLocked, "pid %d (%s) since %s", status.Holder.PID, status.Holder.Executable, status.Holder.Since.Format(time.RFC3339)),
				"close the other salonlux session or remove "+path+" if it is not running",
			)
		}

		logger.Warn("Replacing stale lock file", "path", path, "pid", status.Holder.PID, "malformed", status.Malformed)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to remove stale lock file")
		}
	}
	return nil, errors.Newf("could not acquire lock %s", path)
}

// Release removes the lock file if it still belongs to this lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "failed to read lock file")
	}
	holder, err := decode(string(data))
	if err != nil || holder.PID != l.pid {
		logger.Warn("Lock file changed owner, leaving it in place", "path", l.path)
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove lock file")
	}
	logger.Debug("Lock released", "path", l.path)
	return nil
}

// Inspect reads the lock file in dir without modifying it.
func Inspect(dir string) (Status, error) {
	status := Status{Path: Path(dir)}

	data, err := os.ReadFile(status.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return status, nil
		}
		return status, errors.Wrap(err, "failed to read lock file")
	}
	status.Present = true

	holder, err := decode(string(data))
	if err != nil {
		status.Malformed = true
		return status, nil
	}
	status.Holder = holder
	status.Live = isLive(holder)
	return status, nil
}

// isLive reports whether the holder's PID still runs the same executable.
// Matching the executable guards against PID reuse.
func isLive(h Holder) bool {
	process, err := findProcessFunc(h.PID)
	if err != nil || process == nil {
		return false
	}
	if h.Executable == "" {
		return true
	}
	return process.Executable() == h.Executable
}

func executableOf(pid int) string {
	if process, err := findProcessFunc(pid); err == nil && process != nil {
		return process.Executable()
	}
	return filepath.Base(os.Args[0])
}

// Lock files hold "pid|executable|unix-seconds".
func encode(h Holder) string {
	return fmt.Sprintf("%d|%s|%d\n", h.PID, h.Executable, h.Since.Unix())
}

func decode(content string) (Holder, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return Holder{}, errors.New("lock file is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return Holder{}, errors.New("invalid process ID in lock file")
	}
	since, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Holder{}, errors.New("invalid timestamp in lock file")
	}
	return Holder{PID: pid, Executable: parts[1], Since: time.Unix(since, 0)}, nil
}
