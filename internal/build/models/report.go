package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// NewBuildReport constructs a new BuildReport.
func NewBuildReport(buildID string) *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		BuildID:         buildID,
		Start:           time.Now(),
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
		Version:         version.Version,
	}
}

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// BuildReport captures what a site build did and how it ended.
type BuildReport struct {
	SchemaVersion   int
	BuildID         string
	Start           time.Time
	End             time.Time
	Errors          []error // fatal errors causing build abortion (at most one)
	Warnings        []error // non-fatal issues
	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount
	Issues          []ReportIssue
	Outcome         BuildOutcome

	ArchiveBytes      int64
	CSSBytes          int64
	CSSGzipBytes      int64
	AssetsFound       int
	AssetsCopied      int
	AssetsConverted   int
	AssetsFailed      int
	QRGenerated       bool
	LicenseCopied     bool
	OutputBytes       int
	ReferencesChecked int
	ReferencesBroken  int

	Version string
}

// ReportIssueCode enumerates machine-parseable issue identifiers.
// These codes are stable contract and should only be appended.
type ReportIssueCode string

const (
	IssueFetchFailure      ReportIssueCode = "FETCH_FAILURE"
	IssueAssetsMissing     ReportIssueCode = "ASSETS_MISSING"
	IssueAssetConversion   ReportIssueCode = "ASSET_CONVERSION"
	IssueAssetCollision    ReportIssueCode = "ASSET_COLLISION"
	IssueMetadataInvalid   ReportIssueCode = "METADATA_INVALID"
	IssueQRURLMissing      ReportIssueCode = "QR_URL_MISSING"
	IssueTemplateFailure   ReportIssueCode = "TEMPLATE_FAILURE"
	IssueOutputFailure     ReportIssueCode = "OUTPUT_FAILURE"
	IssueBrokenReference   ReportIssueCode = "BROKEN_REFERENCE"
	IssueCanceled          ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a structured entry describing a discrete problem encountered.
type ReportIssue struct {
	Code     ReportIssueCode `json:"code"`
	Stage    StageName       `json:"stage"`
	Severity IssueSeverity   `json:"severity"`
	Message  string          `json:"message"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

// AddIssue appends a structured issue and mirrors severity into Errors/Warnings slices.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, msg string, err error) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Message: msg})
	if err != nil {
		switch severity {
		case SeverityError:
			r.Errors = append(r.Errors, err)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, err)
		}
	}
}

// AddWarning records a non-fatal issue raised inside a stage.
func (r *BuildReport) AddWarning(code ReportIssueCode, stage StageName, err error) {
	r.AddIssue(code, stage, SeverityWarning, err.Error(), err)
}

// WarningsFor returns the number of warning issues recorded for stage.
func (r *BuildReport) WarningsFor(stage StageName) int {
	n := 0
	for _, is := range r.Issues {
		if is.Stage == stage && is.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// RecordStageResult updates BuildReport counters and emits metrics (if recorder non-nil).
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	if r.StageCounts == nil {
		r.StageCounts = make(map[StageName]StageCount)
	}
	sc := r.StageCounts[stage]
	var label metrics.ResultLabel
	switch res {
	case StageResultSuccess:
		sc.Success++
		label = metrics.ResultSuccess
	case StageResultWarning:
		sc.Warning++
		label = metrics.ResultWarning
	case StageResultFatal:
		sc.Fatal++
		label = metrics.ResultFatal
	case StageResultCanceled:
		sc.Canceled++
		label = metrics.ResultCanceled
	case StageResultSkipped:
		label = metrics.ResultSkipped
	}
	r.StageCounts[stage] = sc
	if recorder != nil && label != "" {
		recorder.IncStageResult(string(stage), label)
	}
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("duration=%s assets=%d converted=%d failed=%d qr=%t errors=%d warnings=%d stages=%d outcome=%s",
		dur.Truncate(time.Millisecond), r.AssetsFound, r.AssetsConverted, r.AssetsFailed, r.QRGenerated,
		len(r.Errors), len(r.Warnings), len(r.StageDurations), string(r.Outcome))
}

// DeriveOutcome sets the Outcome field based on recorded errors/warnings.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// WriteJSON writes the report to path through a temporary file and rename.
func (r *BuildReport) WriteJSON(path string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("ensure report directory: %w", err)
	}
	jb, err := json.MarshalIndent(r.SanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(jb, '\n'), 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename report json: %w", err)
	}
	return nil
}

// SanitizedCopy returns a copy with error fields converted to strings for JSON friendliness.
func (r *BuildReport) SanitizedCopy() *BuildReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	sek := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		sek[string(k)] = string(v)
	}
	durations := make(map[string]int64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		durations[k] = v.Milliseconds()
	}
	issues := r.Issues
	if issues == nil {
		issues = []ReportIssue{}
	}

	s := &BuildReportSerializable{
		SchemaVersion:     r.SchemaVersion,
		BuildID:           r.BuildID,
		Start:             r.Start,
		End:               r.End,
		Errors:            make([]string, len(r.Errors)),
		Warnings:          make([]string, len(r.Warnings)),
		StageDurationsMS:  durations,
		StageErrorKinds:   sek,
		StageCounts:       stageCounts,
		Issues:            issues,
		Outcome:           string(r.Outcome),
		ArchiveBytes:      r.ArchiveBytes,
		CSSBytes:          r.CSSBytes,
		CSSGzipBytes:      r.CSSGzipBytes,
		AssetsFound:       r.AssetsFound,
		AssetsCopied:      r.AssetsCopied,
		AssetsConverted:   r.AssetsConverted,
		AssetsFailed:      r.AssetsFailed,
		QRGenerated:       r.QRGenerated,
		LicenseCopied:     r.LicenseCopied,
		OutputBytes:       r.OutputBytes,
		ReferencesChecked: r.ReferencesChecked,
		ReferencesBroken:  r.ReferencesBroken,
		Version:           r.Version,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// BuildReportSerializable mirrors BuildReport but with string errors for JSON output.
type BuildReportSerializable struct {
	SchemaVersion     int                   `json:"schema_version"`
	BuildID           string                `json:"build_id"`
	Start             time.Time             `json:"start"`
	End               time.Time             `json:"end"`
	Errors            []string              `json:"errors"`
	Warnings          []string              `json:"warnings"`
	StageDurationsMS  map[string]int64      `json:"stage_durations_ms"`
	StageErrorKinds   map[string]string     `json:"stage_error_kinds"`
	StageCounts       map[string]StageCount `json:"stage_counts"`
	Issues            []ReportIssue         `json:"issues"`
	Outcome           string                `json:"outcome"`
	ArchiveBytes      int64                 `json:"archive_bytes"`
	CSSBytes          int64                 `json:"css_bytes"`
	CSSGzipBytes      int64                 `json:"css_gzip_bytes"`
	AssetsFound       int                   `json:"assets_found"`
	AssetsCopied      int                   `json:"assets_copied"`
	AssetsConverted   int                   `json:"assets_converted"`
	AssetsFailed      int                   `json:"assets_failed"`
	QRGenerated       bool                  `json:"qr_generated"`
	LicenseCopied     bool                  `json:"license_copied"`
	OutputBytes       int                   `json:"output_bytes"`
	ReferencesChecked int                   `json:"references_checked"`
	ReferencesBroken  int                   `json:"references_broken"`
	Version           string                `json:"version,omitempty"`
}
