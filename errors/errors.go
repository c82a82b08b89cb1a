package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad        Phase = "load"        // guest compilation
	PhaseLink        Phase = "link"        // import/export resolution
	PhaseInstantiate Phase = "instantiate" // module instantiation
	PhaseABI         Phase = "abi"         // guest memory exchange
	PhaseOptimize    Phase = "optimize"    // guest optimize call
	PhaseConfig      Phase = "config"      // configuration
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidData   Kind = "invalid_data"
	KindInvalidInput  Kind = "invalid_input"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindAllocation    Kind = "allocation"
	KindInvalidUTF8   Kind = "invalid_utf8"
	KindMissingImport Kind = "missing_import"
	KindMissingExport Kind = "missing_export"
	KindClosed        Kind = "closed"
	KindTrap          Kind = "trap"
	KindGuest         Kind = "guest_error"
	KindInstantiation Kind = "instantiation"
)

// Error is the structured error type used by the optimizer host
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Export string
	Detail string
	Stderr string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Export != "" {
		b.WriteString(" in ")
		b.WriteString(e.Export)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Export sets the guest export involved
func (b *Builder) Export(name string) *Builder {
	b.err.Export = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Stderr attaches captured guest stderr
func (b *Builder) Stderr(s string) *Builder {
	b.err.Stderr = s
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseABI,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Cause:  cause,
	}
}

// OutOfBounds creates an out of bounds memory access error
func OutOfBounds(offset, length, size uint32) *Error {
	return &Error{
		Phase:  PhaseABI,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("range [%d, %d) outside memory of %d bytes", offset, uint64(offset)+uint64(length), size),
		Value:  offset,
	}
}

// Trap creates an error for a guest call that trapped
func Trap(export string, cause error, stderr string) *Error {
	return &Error{
		Phase:  PhaseOptimize,
		Kind:   KindTrap,
		Export: export,
		Detail: "guest trapped",
		Cause:  cause,
		Stderr: stderr,
	}
}

// Guest creates an error reported by the guest itself
func Guest(export, message string) *Error {
	return &Error{
		Phase:  PhaseOptimize,
		Kind:   KindGuest,
		Export: export,
		Detail: message,
	}
}

// Closed creates an error for use after close
func Closed(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseInstantiate,
		Kind:   KindInstantiation,
		Detail: "instantiate guest",
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingImport represents a single unresolved guest import
type MissingImport struct {
	Module   string // e.g., "env"
	Function string // e.g., "__wbindgen_throw"
}

// MissingImportsError is returned when the guest imports host functions the
// optimizer host does not provide
type MissingImportsError struct {
	Imports []MissingImport
}

// NewMissingImportsError creates an error from a list of "module#function" strings
func NewMissingImportsError(imports []string) *MissingImportsError {
	result := &MissingImportsError{
		Imports: make([]MissingImport, 0, len(imports)),
	}
	for _, imp := range imports {
		mod, fn := parseImportKey(imp)
		result.Imports = append(result.Imports, MissingImport{
			Module:   mod,
			Function: fn,
		})
	}
	return result
}

func parseImportKey(key string) (module, function string) {
	mod, fn, found := strings.Cut(key, "#")
	if found {
		return mod, fn
	}
	return key, ""
}

func (e *MissingImportsError) Error() string {
	if len(e.Imports) == 0 {
		return "[link] missing_import: no imports specified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("guest needs %d host function(s) that are not provided:\n", len(e.Imports)))

	byMod := make(map[string][]string)
	var modOrder []string
	for _, imp := range e.Imports {
		if _, exists := byMod[imp.Module]; !exists {
			modOrder = append(modOrder, imp.Module)
		}
		byMod[imp.Module] = append(byMod[imp.Module], imp.Function)
	}

	for _, mod := range modOrder {
		b.WriteString("\n  ")
		b.WriteString(mod)
		b.WriteString(":\n")
		for _, fn := range byMod[mod] {
			b.WriteString("    - ")
			b.WriteString(fn)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingImportsError) Is(target error) bool {
	_, ok := target.(*MissingImportsError)
	return ok
}

// MissingExportsError is returned when the guest lacks exports the optimizer
// ABI requires
type MissingExportsError struct {
	Exports []string
}

func (e *MissingExportsError) Error() string {
	if len(e.Exports) == 0 {
		return "[link] missing_export: no exports specified"
	}
	return fmt.Sprintf("[link] missing_export: guest does not export %s", strings.Join(e.Exports, ", "))
}

// Is reports whether target matches this error type
func (e *MissingExportsError) Is(target error) bool {
	_, ok := target.(*MissingExportsError)
	return ok
}
