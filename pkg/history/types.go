// Package history keeps a local SQLite log of scaffold runs.
package history

import "time"

// Status is the outcome of a scaffold run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusAborted Status = "aborted"
)

// Run is one scaffold attempt.
type Run struct {
	ID          string
	Timestamp   time.Time
	Target      string
	ProjectName string
	Variant     string
	Status      Status
	InstallOK   bool
	SchemaOK    bool
	DryRun      bool
	Files       int
	Duration    time.Duration
	Error       string
}

// Stats summarises the runs of a time window.
type Stats struct {
	Days         int
	Total        int
	Succeeded    int
	Failed       int
	Aborted      int
	SuccessRate  float64
	AvgDuration  time.Duration
	Variants     []VariantStat
	CommonErrors []ErrorStat
}

type VariantStat struct {
	Variant     string
	Count       int
	SuccessRate float64
}

type ErrorStat struct {
	Error    string
	Count    int
	LastSeen time.Time
}
