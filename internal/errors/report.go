package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/Sir-Teo/mica/internal/token"
)

var (
	errorColor  = color.New(color.FgRed, color.Bold)
	codeColor   = color.New(color.FgYellow)
	phaseColor  = color.New(color.FgCyan)
	headerColor = color.New(color.Bold)
)

// Report is the canonical structured diagnostic type shared by every stage.
type Report struct {
	Schema  string      `json:"schema"` // Always "mica.diagnostic/v1"
	Code    string      `json:"code"`
	Phase   string      `json:"phase"`
	Message string      `json:"message"`
	Span    *token.Span `json:"span,omitempty"`
}

// ReportError wraps a Report as an error so it survives errors.As unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as an error.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// Phase names used by the lexer and parser reports; they match the Phase
// values of their codes in ErrorRegistry.
const (
	PhaseLex   = "lexer"
	PhaseParse = "parser"
)

// New builds a Report for the given phase/code/message, with an optional span.
func New(phase, code, message string, span *token.Span) *Report {
	return &Report{
		Schema:  "mica.diagnostic/v1",
		Code:    code,
		Phase:   phase,
		Message: message,
		Span:    span,
	}
}

// ToJSON renders the report as deterministic JSON.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UserLine renders the single-line user-visible form: "error: <message>".
func (r *Report) UserLine() string {
	return fmt.Sprintf("error: %s", r.Message)
}

// Render writes a colorized, single-line diagnostic in the CLI collaborator's
// preferred human-readable form, following the teacher's color conventions
// (red bold for the headline, yellow for the code, cyan for the phase).
func (r *Report) Render() string {
	head := errorColor.Sprint("error")
	code := codeColor.Sprintf("[%s]", r.Code)
	phase := phaseColor.Sprintf("(%s)", r.Phase)
	line := fmt.Sprintf("%s %s %s: %s", head, code, phase, r.Message)
	if r.Span != nil {
		line += fmt.Sprintf(" %s", headerColor.Sprintf("@%s", r.Span))
	}
	return line
}
