// Package errors provides the structured diagnostic taxonomy shared by every
// pipeline stage, plus colorized rendering for the CLI collaborator.
package errors

// Error code constants organized by phase.
// Each constant represents a specific error condition with structured reporting.
const (
	// ============================================================================
	// Lexer Errors (LEX###) — fatal, abort the pipeline
	// ============================================================================

	// LEX001 indicates a malformed numeric literal (bad digits, overflow)
	LEX001 = "LEX001"

	// LEX002 indicates an unterminated string literal or a bad escape sequence
	LEX002 = "LEX002"

	// LEX003 indicates an unexpected/illegal character
	LEX003 = "LEX003"

	// ============================================================================
	// Parser Errors (PAR###) — fatal, abort the pipeline
	// ============================================================================

	// PAR001 indicates an unexpected token was encountered during parsing
	PAR001 = "PAR001"

	// PAR002 indicates an unexpected end of input
	PAR002 = "PAR002"

	// PAR003 indicates a malformed effect row (`!{...}`)
	PAR003 = "PAR003"

	// PAR004 indicates a malformed type expression
	PAR004 = "PAR004"

	// PAR005 indicates a malformed pattern
	PAR005 = "PAR005"

	// ============================================================================
	// Resolver Diagnostics (RES###) — non-fatal, accumulated
	// ============================================================================

	// RES001 indicates a duplicate type definition in a module
	RES001 = "RES001"

	// RES002 indicates a duplicate function definition in a module
	RES002 = "RES002"

	// RES003 indicates a duplicate import alias
	RES003 = "RES003"

	// RES004 indicates an unresolved path
	RES004 = "RES004"

	// RES005 indicates two workspace module prefixes both resolve a path
	RES005 = "RES005"

	// ============================================================================
	// Checker Diagnostics (CHK###) — non-fatal, accumulated
	// ============================================================================

	// CHK001 indicates a non-exhaustive match over a sum type
	CHK001 = "CHK001"

	// CHK002 indicates a type mismatch
	CHK002 = "CHK002"

	// CHK003 indicates a call with the wrong number of arguments
	CHK003 = "CHK003"

	// CHK004 indicates a binary/unary operator applied to incompatible operands
	CHK004 = "CHK004"

	// CHK005 indicates a capability used but not declared in the effect row
	CHK005 = "CHK005"

	// CHK006 indicates a capability required but not in scope as a parameter
	CHK006 = "CHK006"

	// CHK007 indicates an unknown enum variant / constructor
	CHK007 = "CHK007"

	// CHK008 indicates a return expression whose type disagrees with the
	// function's declared return type
	CHK008 = "CHK008"

	// CHK009 indicates a duplicate capability name within one effect row
	CHK009 = "CHK009"

	// CHK010 indicates a match arm naming a variant from a foreign ADT
	CHK010 = "CHK010"

	// ============================================================================
	// Backend Errors (BCK###) — collaborator layer, uniform result type
	// ============================================================================

	// BCK001 indicates a backend does not support a requested construct
	BCK001 = "BCK001"

	// BCK002 indicates an internal backend failure
	BCK002 = "BCK002"

	// ============================================================================
	// Runtime Errors (RUN###)
	// ============================================================================

	// RUN001 indicates a provider was registered under a name already in use
	RUN001 = "RUN001"

	// RUN002 indicates a task declared a capability with no registered provider
	RUN002 = "RUN002"

	// RUN003 indicates a task invoked a capability it did not declare
	RUN003 = "RUN003"

	// RUN004 indicates a capability provider failed to handle an invocation
	RUN004 = "RUN004"
)

// ErrorInfo provides structured information about an error code.
type ErrorInfo struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// ErrorRegistry maps error codes to their information.
var ErrorRegistry = map[string]ErrorInfo{
	LEX001: {LEX001, "lexer", "literal", "Malformed numeric literal"},
	LEX002: {LEX002, "lexer", "literal", "Unterminated string or bad escape"},
	LEX003: {LEX003, "lexer", "syntax", "Unexpected character"},

	PAR001: {PAR001, "parser", "syntax", "Unexpected token"},
	PAR002: {PAR002, "parser", "syntax", "Unexpected end of input"},
	PAR003: {PAR003, "parser", "syntax", "Malformed effect row"},
	PAR004: {PAR004, "parser", "syntax", "Malformed type expression"},
	PAR005: {PAR005, "parser", "syntax", "Malformed pattern"},

	RES001: {RES001, "resolver", "namespace", "Duplicate type definition"},
	RES002: {RES002, "resolver", "namespace", "Duplicate function definition"},
	RES003: {RES003, "resolver", "namespace", "Duplicate import alias"},
	RES004: {RES004, "resolver", "resolution", "Unresolved path"},
	RES005: {RES005, "resolver", "resolution", "Ambiguous workspace prefix"},

	CHK001: {CHK001, "checker", "exhaustiveness", "Non-exhaustive match"},
	CHK002: {CHK002, "checker", "type", "Type mismatch"},
	CHK003: {CHK003, "checker", "arity", "Wrong number of arguments"},
	CHK004: {CHK004, "checker", "operator", "Incompatible operand types"},
	CHK005: {CHK005, "checker", "effect", "Capability not declared"},
	CHK006: {CHK006, "checker", "effect", "Capability not in scope"},
	CHK007: {CHK007, "checker", "variant", "Unknown variant or constructor"},
	CHK008: {CHK008, "checker", "type", "Wrong return type"},
	CHK009: {CHK009, "checker", "effect", "Duplicate capability in effect row"},
	CHK010: {CHK010, "checker", "exhaustiveness", "Variant from foreign ADT"},

	BCK001: {BCK001, "backend", "support", "Unsupported construct"},
	BCK002: {BCK002, "backend", "internal", "Internal backend failure"},

	RUN001: {RUN001, "runtime", "registration", "Duplicate provider"},
	RUN002: {RUN002, "runtime", "capability", "Unknown capability"},
	RUN003: {RUN003, "runtime", "capability", "Missing capability"},
	RUN004: {RUN004, "runtime", "provider", "Provider failure"},
}

// GetErrorInfo returns information about an error code.
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, exists := ErrorRegistry[code]
	return info, exists
}

// IsFatal reports whether a diagnostic of this code aborts the pipeline
// (Lex/Parse) rather than being accumulated (Resolve/Check/Runtime).
func IsFatal(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && (info.Phase == "lexer" || info.Phase == "parser")
}
