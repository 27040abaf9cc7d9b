package parser

import (
	"fmt"

	mcerrors "github.com/Sir-Teo/mica/internal/errors"
	"github.com/Sir-Teo/mica/internal/token"
)

const (
	errUnexpected = mcerrors.PAR001
	errEOF        = mcerrors.PAR002
	errEffectRow  = mcerrors.PAR003
	errType       = mcerrors.PAR004
	errPattern    = mcerrors.PAR005
)

// Error is a fatal parse error with a source span and diagnostic code.
type Error struct {
	Code    string
	Message string
	Span    token.Span
}

func (e *Error) Error() string {
	return "error: " + e.Message
}

// Report renders e as a structured diagnostic.
func (e *Error) Report() *mcerrors.Report {
	span := e.Span
	return mcerrors.New(mcerrors.PhaseParse, e.Code, e.Message, &span)
}

func (p *Parser) errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Span: p.cur().Span}
}
