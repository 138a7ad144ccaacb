// Package errs defines the engine's stable error taxonomy. Every error
// produced anywhere in the pipeline is a *Error carrying a stable Kind, a
// human-readable message, and (where applicable) a source locator so a
// caller can render the offending span against the named variable's
// equation text.
package errs

import "fmt"

// Kind is a stable identifier for a class of error. Kinds are never
// renumbered or removed once shipped; new kinds are appended.
type Kind string

const (
	// Import errors.
	XmlDeserialization Kind = "XmlDeserialization"
	VensimConversion   Kind = "VensimConversion"
	ProtobufDecode     Kind = "ProtobufDecode"

	// Lexical / parse errors.
	InvalidToken        Kind = "InvalidToken"
	UnrecognizedEof      Kind = "UnrecognizedEof"
	UnrecognizedToken    Kind = "UnrecognizedToken"
	ExtraToken           Kind = "ExtraToken"
	UnclosedComment      Kind = "UnclosedComment"
	UnclosedQuotedIdent  Kind = "UnclosedQuotedIdent"
	ExpectedNumber       Kind = "ExpectedNumber"
	EmptyEquation        Kind = "EmptyEquation"

	// Semantic errors.
	UnknownBuiltin                       Kind = "UnknownBuiltin"
	BadBuiltinArgs                       Kind = "BadBuiltinArgs"
	BadModuleInputDst                    Kind = "BadModuleInputDst"
	BadModuleInputSrc                    Kind = "BadModuleInputSrc"
	NotSimulatable                       Kind = "NotSimulatable"
	BadTable                             Kind = "BadTable"
	BadSimSpecs                          Kind = "BadSimSpecs"
	NoAbsoluteReferences                 Kind = "NoAbsoluteReferences"
	CircularDependency                   Kind = "CircularDependency"
	ArraysNotImplemented                 Kind = "ArraysNotImplemented"
	MultiDimensionalArraysNotImplemented Kind = "MultiDimensionalArraysNotImplemented"
	BadDimensionName                     Kind = "BadDimensionName"
	BadModelName                        Kind = "BadModelName"
	MismatchedDimensions                 Kind = "MismatchedDimensions"
	ArrayReferenceNeedsExplicitSubscripts Kind = "ArrayReferenceNeedsExplicitSubscripts"
	DuplicateVariable                    Kind = "DuplicateVariable"
	UnknownDependency                    Kind = "UnknownDependency"
	VariablesHaveErrors                  Kind = "VariablesHaveErrors"
	UnitDefinitionErrors                 Kind = "UnitDefinitionErrors"
	UnitMismatch                         Kind = "UnitMismatch"
	BadBinaryOpInUnits                   Kind = "BadBinaryOpInUnits"
	BadOverride                          Kind = "BadOverride"

	// Catch-all.
	Generic Kind = "Generic"
)

// Locator pinpoints an error within a project: the model and variable it
// belongs to, plus a byte-offset span into that variable's equation or
// unit text.
type Locator struct {
	Model       string
	Variable    string
	StartOffset int
	EndOffset   int
}

// HasSpan reports whether the locator carries a meaningful byte span.
func (l Locator) HasSpan() bool {
	return l.EndOffset > l.StartOffset || l.StartOffset > 0
}

// Error is the engine's single error type. It is always non-nil when
// returned and always carries a stable Kind.
type Error struct {
	Kind    Kind
	Message string
	Locator Locator
	Cause   error
}

// New builds an Error with no locator.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At attaches a locator to the error and returns it for chaining.
func (e *Error) At(model, variable string, start, end int) *Error {
	e.Locator = Locator{Model: model, Variable: variable, StartOffset: start, EndOffset: end}
	return e
}

// Wrap attaches an underlying cause for errors.Is/errors.As unwrapping.
func (e *Error) Wrap(cause error) *Error {
	e.Cause = cause
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	loc := ""
	switch {
	case e.Locator.Model != "" && e.Locator.Variable != "":
		if e.Locator.HasSpan() {
			loc = fmt.Sprintf(" [%s::%s @%d-%d]", e.Locator.Model, e.Locator.Variable, e.Locator.StartOffset, e.Locator.EndOffset)
		} else {
			loc = fmt.Sprintf(" [%s::%s]", e.Locator.Model, e.Locator.Variable)
		}
	case e.Locator.Model != "":
		loc = fmt.Sprintf(" [%s]", e.Locator.Model)
	}
	msg := fmt.Sprintf("%s: %s%s", e.Kind, e.Message, loc)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is allows errors.Is(err, &Error{Kind: X}) style matching on Kind alone.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	if other.Kind == "" {
		return false
	}
	return e.Kind == other.Kind
}

// List is an ordered collection of errors gathered during a pass (parsing,
// unit checking, compilation) that collects rather than stops on first
// failure, per the engine's propagation policy.
type List struct {
	Errors []*Error
}

// Add appends a non-nil error to the list.
func (l *List) Add(err *Error) {
	if err == nil {
		return
	}
	l.Errors = append(l.Errors, err)
}

// Empty reports whether the list has no errors.
func (l *List) Empty() bool {
	return len(l.Errors) == 0
}

// Error renders all collected errors, one per line.
func (l *List) Error() string {
	if l == nil || len(l.Errors) == 0 {
		return ""
	}
	s := ""
	for i, e := range l.Errors {
		if i > 0 {
			s += "\n"
		}
		s += e.Error()
	}
	return s
}

// ByKind returns the subset of errors matching kind.
func (l *List) ByKind(kind Kind) []*Error {
	var out []*Error
	for _, e := range l.Errors {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
