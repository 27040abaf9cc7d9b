package checker

import (
	"github.com/Sir-Teo/mica/internal/errors"
	"github.com/Sir-Teo/mica/internal/token"
)

// Diagnostic is a non-fatal checker finding. The checker never aborts;
// diagnostics accumulate across the whole module (§7 propagation policy).
type Diagnostic struct {
	Code    string
	Message string
	Span    token.Span
}

const (
	codeTypeMismatch         = errors.CHK002 // includes "callee not a function"
	codeBadArity             = errors.CHK003
	codeBadOperand           = errors.CHK004
	codeCalleeEffectMissing  = errors.CHK005 // callee capability not declared by caller
	codeUndeclaredCapability = errors.CHK006 // capability not bound to an in-scope parameter
	codeUnknownVariant       = errors.CHK007
	codeReturnTypeMismatch   = errors.CHK008
	codeDuplicateCapability  = errors.CHK009
)
