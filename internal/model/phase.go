package model

// Phase is the progress of one fetch branch within a selection cycle.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseBinding Phase = "binding"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)
