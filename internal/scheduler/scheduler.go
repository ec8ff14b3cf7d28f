package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"remuxd/internal/fileutil"
	"remuxd/internal/media"
	"remuxd/internal/mux"
)

// pollInterval paces the pause gate and the stop check on supervised
// processes.
const pollInterval = 200 * time.Millisecond

// History receives one record per finished job.
type History interface {
	Record(ctx context.Context, rec HistoryRecord) error
}

// HistoryRecord is the persisted outcome of one job.
type HistoryRecord struct {
	JobID      string
	SourcePath string
	OutputPath string
	Status     JobStatus
	Message    string
	SizeBytes  int64
	StartedAt  time.Time
	FinishedAt time.Time
}

// Option configures the scheduler.
type Option func(*Scheduler)

// WithRunner injects a custom process runner (primarily for tests).
func WithRunner(runner CommandRunner) Option {
	return func(s *Scheduler) {
		if runner != nil {
			s.runner = runner
		}
	}
}

// WithLogger routes structured logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEvents registers the progress event sink.
func WithEvents(sink EventSink) Option {
	return func(s *Scheduler) { s.events = sink }
}

// WithLogSink registers the raw tool output sink.
func WithLogSink(sink LogSink) Option {
	return func(s *Scheduler) { s.logs = sink }
}

// WithHistory registers the job history recorder.
func WithHistory(history History) Option {
	return func(s *Scheduler) { s.history = history }
}

// WithSessionLog attaches a session transcript.
func WithSessionLog(log *SessionLog) Option {
	return func(s *Scheduler) { s.sessionLog = log }
}

// WithStatfs overrides the free-space query (tests only).
func WithStatfs(statfs statfsFunc) Option {
	return func(s *Scheduler) {
		if statfs != nil {
			s.statfs = statfs
		}
	}
}

// WithClock overrides the time source (tests only).
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// Scheduler drains a job queue through at most Settings.MaxParallelJobs
// concurrent workers. A single mutex guards all mutable state; workers
// take it only for queue and liveness bookkeeping, never across a
// process wait.
type Scheduler struct {
	settings       media.Settings
	synth          *mux.Synthesizer
	runner         CommandRunner
	mergeBinary    string
	propeditBinary string

	logger     *slog.Logger
	events     EventSink
	logs       LogSink
	history    History
	sessionLog *SessionLog
	statfs     statfsFunc
	now        func() time.Time

	mu       sync.Mutex
	paused   bool
	stopped  bool
	pending  []media.Job
	live     map[string]Process
	failures int
}

// New constructs a scheduler around the given tool binaries.
func New(settings media.Settings, synth *mux.Synthesizer, mergeBinary, propeditBinary string, opts ...Option) *Scheduler {
	s := &Scheduler{
		settings:       settings,
		synth:          synth,
		runner:         NewCommandRunner(),
		mergeBinary:    mergeBinary,
		propeditBinary: propeditBinary,
		logger:         slog.Default(),
		statfs:         realStatfs,
		now:            time.Now,
		live:           make(map[string]Process),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pause stops workers from starting new jobs. In-flight jobs continue.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume lifts a pause.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Stop abandons the remaining queue and kills every live process.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	procs := make([]Process, 0, len(s.live))
	for _, proc := range s.live {
		procs = append(procs, proc)
	}
	s.mu.Unlock()
	for _, proc := range procs {
		proc.Kill()
	}
}

// Run drains the given jobs and blocks until every worker has exited.
// It returns an error when any job failed; individual outcomes flow
// through the event sink and history recorder.
func (s *Scheduler) Run(ctx context.Context, jobs []media.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	s.mu.Lock()
	s.pending = append(s.pending, jobs...)
	s.mu.Unlock()
	for _, job := range jobs {
		s.emit(ProgressEvent{JobID: job.ID, Status: StatusQueued})
	}

	workers := s.settings.Workers(len(jobs))
	s.logger.Info("session started", "jobs", len(jobs), "workers", workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx)
		}()
	}
	wg.Wait()

	s.mu.Lock()
	failures := s.failures
	s.mu.Unlock()
	if failures > 0 {
		return fmt.Errorf("%d of %d jobs failed", failures, len(jobs))
	}
	return nil
}

func (s *Scheduler) worker(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		if s.paused {
			s.mu.Unlock()
			time.Sleep(pollInterval)
			continue
		}
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		job := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.processJob(ctx, job)
	}
}

func (s *Scheduler) processJob(ctx context.Context, job media.Job) {
	started := s.now()
	s.emit(ProgressEvent{JobID: job.ID, Status: StatusProcessing, Message: "starting"})
	s.logger.Info("job started", "job", job.ID, "source", job.Primary.Path)

	plan := mux.ResolveOutput(job, s.settings, started)

	if err := s.preflight(job, plan); err != nil {
		s.fail(ctx, job, started, err.Error(), "")
		return
	}

	if mux.FastPathEligible(job, s.settings) && s.settings.UseFastPath {
		if args, ok := mux.BuildPropeditArgs(job.Primary); ok {
			s.runFastPath(ctx, job, started, args)
			return
		}
		// No pending edits; a full remux is the only way to apply the
		// container-level settings.
		s.logger.Debug("fast path skipped, no track edits", "job", job.ID)
	}

	args, _ := s.synth.Synthesize(ctx, job, s.settings, plan.TempPath)
	var transcript []string
	exitCode, runErr := s.supervise(ctx, job, s.mergeBinary, args, &transcript)

	if runErr != nil {
		s.cleanupTemp(plan)
		s.fail(ctx, job, started, runErr.Error(), lastLine(transcript))
		return
	}

	warnings := false
	switch {
	case exitCode == 0:
	case s.settings.WarningsExitCode >= 0 && exitCode == s.settings.WarningsExitCode && fileExists(plan.TempPath):
		warnings = true
	default:
		s.cleanupTemp(plan)
		s.fail(ctx, job, started, fmt.Sprintf("mkvmerge exited with code %d", exitCode), lastLine(transcript))
		return
	}

	finalPath, size, err := finalize(job, plan, s.settings)
	if err != nil {
		s.cleanupTemp(plan)
		s.fail(ctx, job, started, err.Error(), "")
		return
	}
	s.keepLog(finalPath, transcript)

	message := "finished"
	if warnings {
		message = "finished with warnings"
	}
	s.logger.Info("job finished", "job", job.ID, "output", finalPath, "size", size, "warnings", warnings)
	s.emit(ProgressEvent{
		JobID:          job.ID,
		Status:         StatusCompleted,
		Percent:        100,
		Message:        message,
		OutputPath:     finalPath,
		FinalSizeBytes: size,
	})
	s.record(ctx, HistoryRecord{
		JobID:      job.ID,
		SourcePath: job.Primary.Path,
		OutputPath: finalPath,
		Status:     StatusCompleted,
		Message:    message,
		SizeBytes:  size,
		StartedAt:  started,
		FinishedAt: s.now(),
	})
}

// runFastPath edits track properties in place with mkvpropedit and
// applies only the rename-style finalization.
func (s *Scheduler) runFastPath(ctx context.Context, job media.Job, started time.Time, args []string) {
	var transcript []string
	exitCode, runErr := s.supervise(ctx, job, s.propeditBinary, args, &transcript)
	if runErr != nil {
		s.fail(ctx, job, started, runErr.Error(), lastLine(transcript))
		return
	}
	if exitCode != 0 {
		s.fail(ctx, job, started, fmt.Sprintf("mkvpropedit exited with code %d", exitCode), lastLine(transcript))
		return
	}

	finalPath, size, err := s.finalizeInPlace(job)
	if err != nil {
		s.fail(ctx, job, started, err.Error(), "")
		return
	}
	s.keepLog(finalPath, transcript)

	s.logger.Info("job finished", "job", job.ID, "output", finalPath, "size", size, "fast_path", true)
	s.emit(ProgressEvent{
		JobID:          job.ID,
		Status:         StatusCompleted,
		Percent:        100,
		Message:        "finished (in-place)",
		OutputPath:     finalPath,
		FinalSizeBytes: size,
	})
	s.record(ctx, HistoryRecord{
		JobID:      job.ID,
		SourcePath: job.Primary.Path,
		OutputPath: finalPath,
		Status:     StatusCompleted,
		Message:    "finished (in-place)",
		SizeBytes:  size,
		StartedAt:  started,
		FinishedAt: s.now(),
	})
}

// finalizeInPlace applies CRC stem rewriting to a file edited in place.
func (s *Scheduler) finalizeInPlace(job media.Job) (string, int64, error) {
	path := job.Primary.Path
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("finalize: %w", err)
	}
	if !s.settings.AddCRC && !s.settings.RemoveOldCRC {
		return path, info.Size(), nil
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if s.settings.RemoveOldCRC {
		stem = StripCRCToken(stem)
	}
	if s.settings.AddCRC {
		crc, err := fileutil.CRC32File(path)
		if err != nil {
			return "", 0, err
		}
		stem = StampCRC(stem, crc)
	}
	target := filepath.Join(filepath.Dir(path), stem+filepath.Ext(path))
	if target != path {
		if err := os.Rename(path, target); err != nil {
			return "", 0, fmt.Errorf("finalize: rename output: %w", err)
		}
	}
	return target, info.Size(), nil
}

func (s *Scheduler) preflight(job media.Job, plan mux.Plan) error {
	outDir := filepath.Dir(plan.TempPath)
	if !plan.Overwrite {
		if err := checkOutputDir(outDir); err != nil {
			return err
		}
	}
	return checkFreeSpace(s.statfs, outDir, job.Primary.Size)
}

// supervise runs one external tool to completion, forwarding progress
// and output lines. A stop request kills the process; exit codes are
// returned to the caller for policy decisions.
func (s *Scheduler) supervise(ctx context.Context, job media.Job, binary string, args []string, transcript *[]string) (int, error) {
	var lineMu sync.Mutex
	onLine := func(line string) {
		lineMu.Lock()
		*transcript = append(*transcript, line)
		lineMu.Unlock()
		s.sessionLog.Append(job.ID, line)
		if s.logs != nil {
			s.logs(job.ID, line)
		}
		if percent, ok := ParsePercent(line); ok {
			s.emit(ProgressEvent{JobID: job.ID, Status: StatusProcessing, Percent: ClampPercent(percent)})
		}
	}

	proc, err := s.runner.Start(ctx, binary, args, onLine)
	if err != nil {
		return 0, fmt.Errorf("spawn %s: %w", binary, err)
	}

	s.mu.Lock()
	s.live[job.ID] = proc
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.live, job.ID)
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-proc.Done():
			// A stop request may have killed the process before the next
			// poll tick; report that as a stop, not a tool failure.
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if stopped && proc.ExitCode() != 0 {
				return proc.ExitCode(), fmt.Errorf("job stopped")
			}
			return proc.ExitCode(), nil
		case <-ctx.Done():
			proc.Kill()
			<-proc.Done()
			return proc.ExitCode(), ctx.Err()
		case <-ticker.C:
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if stopped {
				proc.Kill()
				<-proc.Done()
				return proc.ExitCode(), fmt.Errorf("job stopped")
			}
		}
	}
}

func (s *Scheduler) fail(ctx context.Context, job media.Job, started time.Time, detail, lastOutput string) {
	s.mu.Lock()
	s.failures++
	if s.settings.AbortOnErrors {
		// Pause rather than stop: in-flight jobs finish, nothing new
		// starts, and the caller decides between Resume and Stop.
		s.paused = true
	}
	s.mu.Unlock()

	if lastOutput != "" {
		detail = detail + ": " + lastOutput
	}
	s.logger.Error("job failed", "job", job.ID, "detail", detail)
	s.emit(ProgressEvent{JobID: job.ID, Status: StatusError, Message: "failed", ErrorDetail: detail})
	s.record(ctx, HistoryRecord{
		JobID:      job.ID,
		SourcePath: job.Primary.Path,
		Status:     StatusError,
		Message:    detail,
		StartedAt:  started,
		FinishedAt: s.now(),
	})
}

func (s *Scheduler) cleanupTemp(plan mux.Plan) {
	// In destination mode the temp path is the final path; a failed run
	// must not leave a truncated output behind either way.
	if fileExists(plan.TempPath) {
		_ = os.Remove(plan.TempPath)
	}
}

func (s *Scheduler) keepLog(finalPath string, transcript []string) {
	if !s.settings.KeepLogFile || len(transcript) == 0 {
		return
	}
	logPath := strings.TrimSuffix(finalPath, filepath.Ext(finalPath)) + ".log"
	data := strings.Join(transcript, "\n") + "\n"
	if err := os.WriteFile(logPath, []byte(data), 0o644); err != nil {
		s.logger.Warn("keep log file", "path", logPath, "error", err)
	}
}

func (s *Scheduler) emit(event ProgressEvent) {
	if s.events != nil {
		s.events(event)
	}
}

func (s *Scheduler) record(ctx context.Context, rec HistoryRecord) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, rec); err != nil {
		s.logger.Warn("record job history", "job", rec.JobID, "error", err)
	}
}

func lastLine(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
