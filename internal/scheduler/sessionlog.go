package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// SessionLog is the append-only transcript of one batch session: every
// line the supervised tools print, tagged with job id and time. Writes
// are best-effort; a full disk must never fail a job for want of a log
// line.
type SessionLog struct {
	path string

	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// NewSessionLog truncates and opens the transcript at path, creating
// parent directories as needed.
func NewSessionLog(path string) (*SessionLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("session log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	return &SessionLog{path: path, file: file, now: time.Now}, nil
}

// Path returns the transcript location on disk.
func (l *SessionLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes one tagged line to the transcript.
func (l *SessionLog) Append(jobID, line string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	stamp := l.now().Format("15:04:05")
	_, _ = fmt.Fprintf(l.file, "%s [%s] %s\n", stamp, jobID, line)
}

// Close flushes and closes the transcript.
func (l *SessionLog) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// SessionLock guards against two concurrent sessions mutating the same
// files. The lock is advisory and lives next to the session log.
type SessionLock struct {
	lock *flock.Flock
}

// AcquireSessionLock takes the advisory lock at path without blocking.
func AcquireSessionLock(path string) (*SessionLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("session lock dir: %w", err)
	}
	lock := flock.New(path)
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !held {
		return nil, fmt.Errorf("another session is already running (lock %s held)", path)
	}
	return &SessionLock{lock: lock}, nil
}

// Release drops the lock.
func (l *SessionLock) Release() {
	if l == nil || l.lock == nil {
		return
	}
	_ = l.lock.Unlock()
}
