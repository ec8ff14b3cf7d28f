package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"remuxd/internal/fileutil"
	"remuxd/internal/logging"
	"remuxd/internal/mux"
	"remuxd/internal/scheduler"
	"remuxd/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <jobs.toml>",
		Short: "Process a batch of remux jobs",
		Long: "Run reads a TOML jobs file, probes every primary file, and drains\n" +
			"the batch through the worker pool. Interrupting the session (Ctrl-C)\n" +
			"stops cleanly: running tools are killed and queued jobs are abandoned.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, ctx, args[0])
		},
	}
}

func runSession(cmd *cobra.Command, cmdCtx *commandContext, jobsPath string) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewForSession(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := requireTools(cfg, logger); err != nil {
		return err
	}

	lock, err := scheduler.AcquireSessionLock(cfg.SessionLockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	sessionLog, err := scheduler.NewSessionLog(cfg.SessionLogPath())
	if err != nil {
		return err
	}
	defer sessionLog.Close()

	history, err := store.Open(cfg.HistoryDBPath())
	if err != nil {
		return fmt.Errorf("open job history: %w", err)
	}
	defer history.Close()

	jobs, err := cmdCtx.loadJobs(cmd.Context(), jobsPath)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Jobs file resolved to no work; nothing to do.")
		return nil
	}

	prober, err := cmdCtx.newProber()
	if err != nil {
		return err
	}

	outcomes := newOutcomeTracker(logger)
	var sched *scheduler.Scheduler
	events := outcomes.observe
	if cfg.Mux.AbortOnErrors {
		// A failure pauses the scheduler; with nobody at the controls to
		// resume, the only sensible translation is a clean stop.
		events = func(event scheduler.ProgressEvent) {
			outcomes.observe(event)
			if event.Status == scheduler.StatusError {
				logger.Error("aborting session after job failure", "job", shortID(event.JobID))
				sched.Stop()
			}
		}
	}
	sched = scheduler.New(
		cfg.Settings(),
		mux.NewSynthesizer(prober),
		cfg.Mux.MkvmergeBinary,
		cfg.Mux.MkvpropeditBinary,
		scheduler.WithLogger(logger),
		scheduler.WithEvents(events),
		scheduler.WithHistory(history),
		scheduler.WithSessionLog(sessionLog),
	)

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-signalCtx.Done()
		sched.Stop()
	}()

	runErr := sched.Run(context.Background(), jobs)

	copySessionLog(cfg.Output.KeepLogFile, cfg.Paths.DestinationDir, sessionLog)

	fmt.Fprintln(cmd.OutOrStdout(), outcomes.renderSummary())
	return runErr
}

// copySessionLog mirrors the transcript into the destination directory
// when log keeping is on. Best effort; a failed copy never fails the run.
func copySessionLog(keep bool, destinationDir string, sessionLog *scheduler.SessionLog) {
	if !keep || destinationDir == "" || sessionLog == nil {
		return
	}
	_ = sessionLog.Close()
	target := filepath.Join(destinationDir, filepath.Base(sessionLog.Path()))
	_ = fileutil.CopyFile(sessionLog.Path(), target)
}

// outcomeTracker consumes progress events, reporting milestones as they
// happen and collecting the per-job rows for the final summary table.
type outcomeTracker struct {
	logger *slog.Logger

	mu       sync.Mutex
	deciles  map[string]int
	statuses map[string]scheduler.ProgressEvent
	order    []string
}

func newOutcomeTracker(logger *slog.Logger) *outcomeTracker {
	return &outcomeTracker{
		logger:   logger,
		deciles:  make(map[string]int),
		statuses: make(map[string]scheduler.ProgressEvent),
	}
}

func (o *outcomeTracker) observe(event scheduler.ProgressEvent) {
	o.mu.Lock()
	if _, seen := o.statuses[event.JobID]; !seen {
		o.order = append(o.order, event.JobID)
	}
	o.statuses[event.JobID] = event

	logProgress := false
	if event.Status == scheduler.StatusProcessing && event.Percent > 0 {
		decile := event.Percent / 10
		if decile > o.deciles[event.JobID] {
			o.deciles[event.JobID] = decile
			logProgress = true
		}
	}
	o.mu.Unlock()

	if logProgress {
		o.logger.Info("progress", "job", shortID(event.JobID), "percent", event.Percent)
	}
}

func (o *outcomeTracker) renderSummary() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	ids := make([]string, len(o.order))
	copy(ids, o.order)
	sort.SliceStable(ids, func(i, j int) bool {
		return string(o.statuses[ids[i]].Status) < string(o.statuses[ids[j]].Status)
	})

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		event := o.statuses[id]
		detail := event.OutputPath
		if event.Status == scheduler.StatusError {
			detail = event.ErrorDetail
		}
		size := ""
		if event.FinalSizeBytes > 0 {
			size = formatSize(event.FinalSizeBytes)
		}
		rows = append(rows, []string{
			shortID(id),
			statusCell(string(event.Status)),
			size,
			detail,
		})
	}
	return renderTable(
		[]string{"Job", "Status", "Size", "Output / Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}
