package scheduler

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler is an interface which implementations can schedule and cancel jobs
type Scheduler interface {
	Cancel(IDs []string)
	Schedule(in time.Duration, ID string, job func() (nextRunIn time.Duration, reschedule bool))
}

// MockScheduler is a mock implementation of Scheduler
type MockScheduler struct {
	CancelFunc   func(IDs []string)
	ScheduleFunc func(in time.Duration, ID string, job func() (nextRunIn time.Duration, reschedule bool))
}

// Cancel mocks the Cancel function of the Scheduler interface
func (mock *MockScheduler) Cancel(IDs []string) {
	if mock.CancelFunc != nil {
		mock.CancelFunc(IDs)
		return
	}
	log.Errorf("MockScheduler doesn't have Cancel function defined")
}

// Schedule mocks the Schedule function of the Scheduler interface
func (mock *MockScheduler) Schedule(in time.Duration, ID string, job func() (nextRunIn time.Duration, reschedule bool)) {
	if mock.ScheduleFunc != nil {
		mock.ScheduleFunc(in, ID, job)
		return
	}
	log.Errorf("MockScheduler doesn't have Schedule function defined")
}

// DefaultScheduler is a generic structure that allows to schedule jobs (functions) to run in the future and cancel them.
type DefaultScheduler struct {
	// jobs map holds cancellation channels indexed by the job ID
	jobs map[string]chan struct{}
	mu   *sync.Mutex
}

// NewDefaultScheduler creates an instance of a DefaultScheduler
func NewDefaultScheduler() *DefaultScheduler {
	return &DefaultScheduler{
		jobs: make(map[string]chan struct{}),
		mu:   &sync.Mutex{},
	}
}

func (ds *DefaultScheduler) cancel(ID string) bool {
	cancel, ok := ds.jobs[ID]
	if ok {
		delete(ds.jobs, ID)
		close(cancel)
		log.Debugf("cancelled scheduled job %s", ID)
	}
	return ok
}

// Cancel cancels the scheduled jobs by IDs if present.
// Unknown IDs are ignored.
func (ds *DefaultScheduler) Cancel(IDs []string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	for _, id := range IDs {
		ds.cancel(id)
	}
}

// Schedule a job to run in some time in the future. If job returns true then it will be scheduled one more time.
// If job with the provided ID already exists, a new one won't be scheduled.
// A non-positive in runs the job on the next timer tick.
func (ds *DefaultScheduler) Schedule(in time.Duration, ID string, job func() (nextRunIn time.Duration, reschedule bool)) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	cancel := make(chan struct{})
	if _, ok := ds.jobs[ID]; ok {
		log.Debugf("couldn't schedule a job %s because it already exists. There are %d total jobs scheduled.",
			ID, len(ds.jobs))
		return
	}

	// a timer rather than a ticker so that non-positive durations fire immediately
	timer := time.NewTimer(in)

	ds.jobs[ID] = cancel
	log.Debugf("scheduled a job %s to run in %s. There are %d total jobs scheduled.", ID, in.String(), len(ds.jobs))
	go func() {
		for {
			select {
			case <-timer.C:
				select {
				case <-cancel:
					log.Debugf("scheduled job %s was canceled, stop timer", ID)
					return
				default:
					log.Debugf("time to do a scheduled job %s", ID)
				}
				runIn, reschedule := job()
				if !reschedule {
					ds.mu.Lock()
					defer ds.mu.Unlock()
					delete(ds.jobs, ID)
					log.Debugf("job %s is not scheduled to run again", ID)
					return
				}
				timer.Reset(runIn)
			case <-cancel:
				log.Debugf("job %s was canceled, stopping timer", ID)
				timer.Stop()
				return
			}
		}
	}()
}
