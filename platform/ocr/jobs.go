package ocr

import (
	"fmt"
	"sync"

	platform "github.com/chequebase/chequebase-ai/platform"
)

// jobState is an atomic snapshot of one recognition job
type jobState struct {
	Status        platform.ProcessingStatus
	TextObjectKey string
}

/*
jobTracker keeps the progress of in-flight recognition jobs, keyed by
receipt object key, for the service API to report on. Lookups return the
status and text object key together so callers never see a half-updated job
*/
type jobTracker struct {
	mutex sync.RWMutex
	jobs  map[string]jobState
}

func newJobTracker() *jobTracker {
	return &jobTracker{jobs: make(map[string]jobState)}
}

// begin marks a receipt's recognition job as running
func (t *jobTracker) begin(receiptKey string) {
	t.mutex.Lock()
	t.jobs[receiptKey] = jobState{Status: platform.RunningProcessing}
	t.mutex.Unlock()
}

// finish records the published text object key and marks the job finished
func (t *jobTracker) finish(receiptKey string, textObjectKey string) error {
	return t.update(receiptKey, jobState{
		Status:        platform.FinishedProcessing,
		TextObjectKey: textObjectKey,
	})
}

// fail marks the job failed
func (t *jobTracker) fail(receiptKey string) error {
	return t.update(receiptKey, jobState{Status: platform.FailedProcessing})
}

func (t *jobTracker) update(receiptKey string, state jobState) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.jobs[receiptKey]; !ok {
		return fmt.Errorf("No recognition job for receipt %s", receiptKey)
	}
	t.jobs[receiptKey] = state
	return nil
}

// lookup returns the job snapshot for a receipt
func (t *jobTracker) lookup(receiptKey string) (jobState, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	state, ok := t.jobs[receiptKey]
	if !ok {
		return jobState{}, fmt.Errorf("No recognition job for receipt %s", receiptKey)
	}
	return state, nil
}

// drop forgets a completed job
func (t *jobTracker) drop(receiptKey string) {
	t.mutex.Lock()
	delete(t.jobs, receiptKey)
	t.mutex.Unlock()
}
