package batch

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Status messages reported through Snapshot.Status.
const (
	StatusStarting  = "Starting conversion..."
	StatusCompleted = "Conversion completed! Creating ZIP file..."
	StatusNotFound  = "Session not found"

	noActiveSession = "No active session"
)

// Snapshot is the externally visible progress of one session.
type Snapshot struct {
	Total       int     `json:"total"`
	Processed   int     `json:"processed"`
	Successful  int     `json:"successful"`
	Errors      int     `json:"errors"`
	Percent     float64 `json:"percent"`
	CurrentFile string  `json:"current_file"`
	Status      string  `json:"status"`
}

// NotFound is the snapshot returned for unknown or expired sessions.
func NotFound() Snapshot {
	return Snapshot{CurrentFile: noActiveSession, Status: StatusNotFound}
}

// =============================================================================
// JOB
// =============================================================================

// Job holds the progress counters of one running batch. All methods are safe
// for concurrent use and are no-ops on a nil *Job.
type Job struct {
	mu   sync.Mutex
	snap Snapshot
	done bool
}

func (j *Job) begin(total int) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.snap = Snapshot{Total: total, Status: StatusStarting}
}

func (j *Job) fileStarted(index int, name string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.snap.CurrentFile = name
	j.snap.Status = fmt.Sprintf("Processing %d/%d: %s", index+1, j.snap.Total, name)
}

func (j *Job) fileDone(success bool) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.snap.Processed++
	if success {
		j.snap.Successful++
	} else {
		j.snap.Errors++
	}
	j.snap.Percent = percent(j.snap.Processed, j.snap.Total)
}

func (j *Job) complete() {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.done = true
	j.snap.Percent = 100
	j.snap.CurrentFile = ""
	j.snap.Status = StatusCompleted
}

// Snapshot returns a copy of the current counters.
func (j *Job) Snapshot() Snapshot {
	if j == nil {
		return NotFound()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snap
}

// Done reports whether the batch has finished.
func (j *Job) Done() bool {
	if j == nil {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.done
}

// percent returns processed/total as a percentage rounded to one decimal.
func percent(processed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(processed)/float64(total)*1000) / 10
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker is the registry of sessions that can be polled for progress.
// Finished jobs stay visible for ttl and are then removed.
type Tracker struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

// NewTracker creates an empty registry.
func NewTracker(ttl time.Duration) *Tracker {
	return &Tracker{jobs: make(map[string]*Job), ttl: ttl}
}

// Start registers a new job under sessionID, replacing any previous job
// with the same ID.
func (t *Tracker) Start(sessionID string) *Job {
	job := &Job{snap: Snapshot{Status: StatusStarting}}
	t.mu.Lock()
	t.jobs[sessionID] = job
	t.mu.Unlock()
	return job
}

// Finish schedules removal of the job after the tracker's ttl. A job that
// was replaced in the meantime is left alone.
func (t *Tracker) Finish(sessionID string, job *Job) {
	remove := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.jobs[sessionID] == job {
			delete(t.jobs, sessionID)
		}
	}
	if t.ttl <= 0 {
		remove()
		return
	}
	time.AfterFunc(t.ttl, remove)
}

// Snapshot returns the progress of sessionID, or NotFound().
func (t *Tracker) Snapshot(sessionID string) Snapshot {
	t.mu.Lock()
	job, ok := t.jobs[sessionID]
	t.mu.Unlock()
	if !ok {
		return NotFound()
	}
	return job.Snapshot()
}

// Len returns the number of registered sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.jobs)
}
