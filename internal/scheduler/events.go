package scheduler

// JobStatus is the externally visible state of one job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// ProgressEvent reports a job state change or progress update. Percent
// is only meaningful while processing; FinalSizeBytes only on
// completion.
type ProgressEvent struct {
	JobID          string
	Status         JobStatus
	Percent        int
	Message        string
	OutputPath     string
	FinalSizeBytes int64
	ErrorDetail    string
}

// EventSink receives progress events. Implementations must be safe for
// concurrent use; workers emit from their own goroutines.
type EventSink func(ProgressEvent)

// LogSink receives raw output lines from supervised processes.
type LogSink func(jobID, line string)
