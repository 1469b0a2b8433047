package jobs

import (
	"fmt"
)

// Job is a scheduled background task.
type Job interface {
	Start() error
	Stop()
}

// JobManager starts and stops the scheduled jobs as one unit.
type JobManager struct {
	jobs    map[string]Job
	order   []string
	started []string
}

// NewJobManager returns an empty manager.
//
// Example:
//
//	manager := NewJobManager()
//	manager.Add("outbox dispatch", job)
//	if err := manager.StartAll(); err != nil {
//	    return err
//	}
//	defer manager.StopAll()
func NewJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]Job)}
}

// Add registers a job under name. Jobs start in the order they were added.
func (jm *JobManager) Add(name string, job Job) {
	jm.jobs[name] = job
	jm.order = append(jm.order, name)
}

// StartAll starts every job. If one fails, the jobs already started are stopped.
func (jm *JobManager) StartAll() error {
	for _, name := range jm.order {
		if err := jm.jobs[name].Start(); err != nil {
			jm.StopAll()
			return fmt.Errorf("failed to start %s job: %w", name, err)
		}
		jm.started = append(jm.started, name)
	}
	return nil
}

// StopAll stops the started jobs in reverse order.
func (jm *JobManager) StopAll() {
	for i := len(jm.started) - 1; i >= 0; i-- {
		jm.jobs[jm.started[i]].Stop()
	}
	jm.started = nil
}
