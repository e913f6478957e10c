package session

import (
	"time"
)

// Stage names in pipeline order.
const (
	StageProject   = "project"
	StageShots     = "shots"
	StageAssets    = "assets"
	StageSequences = "sequences"
	StageCasting   = "casting"
	StageEdit      = "edit"
)

// StageNames lists the stages in the order InitWithProject runs them.
var StageNames = []string{StageProject, StageShots, StageAssets, StageSequences, StageCasting, StageEdit}

// Status is the outcome of one stage.
type Status string

const (
	StatusOK         Status = "ok"
	StatusFailed     Status = "failed"
	StatusSuperseded Status = "superseded"
)

// StageResult records how a stage ended. Err is nil unless Status is failed
// or superseded; ErrorKind is its services.Classify name.
type StageResult struct {
	Stage     string        `json:"stage"`
	Status    Status        `json:"status"`
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Report summarises one InitWithProject run.
type Report struct {
	SessionID string        `json:"session_id"`
	ProjectID string        `json:"project_id"`
	EpisodeID string        `json:"episode_id,omitempty"`
	Started   time.Time     `json:"started"`
	Finished  time.Time     `json:"finished"`
	Stages    []StageResult `json:"stages"`
}

// Stage returns the result for name.
func (r *Report) Stage(name string) (StageResult, bool) {
	if r == nil {
		return StageResult{}, false
	}
	for _, res := range r.Stages {
		if res.Stage == name {
			return res, true
		}
	}
	return StageResult{}, false
}

// Failed returns the stages that failed.
func (r *Report) Failed() []StageResult {
	if r == nil {
		return nil
	}
	var out []StageResult
	for _, res := range r.Stages {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

// OK reports whether every stage completed.
func (r *Report) OK() bool {
	if r == nil {
		return false
	}
	for _, res := range r.Stages {
		if res.Status != StatusOK {
			return false
		}
	}
	return len(r.Stages) == len(StageNames)
}

// Superseded reports whether a newer run interrupted this one.
func (r *Report) Superseded() bool {
	if r == nil {
		return false
	}
	for _, res := range r.Stages {
		if res.Status == StatusSuperseded {
			return true
		}
	}
	return false
}
