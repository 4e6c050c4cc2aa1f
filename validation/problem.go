package validation

// Code identifies a validation failure kind. Codes are stable contract:
// the API layer maps them onto problem-details responses.
type Code string

// Validation failure codes.
const (
	// Not-found.
	CodeEntityNotExists   Code = "EntityNotExists"
	CodeRoleNotExists     Code = "RoleNotExists"
	CodePackageNotExists  Code = "PackageNotExists"
	CodeResourceNotExists Code = "ResourceNotExists"

	// Constraint violation.
	CodeDisallowedEntityType              Code = "DisallowedEntityType"
	CodePackageIsNotAssignableToRecipient Code = "PackageIsNotAssignableToRecipient"
	CodeInvalidQueryParameter             Code = "InvalidQueryParameter"
	CodeInvalidResource                   Code = "InvalidResource"
	CodeInvalidDelegation                 Code = "InvalidDelegation"

	// Authorization denial.
	CodeUserNotAuthorized Code = "UserNotAuthorized"

	// Cascade/lifecycle conflict.
	CodeAssignmentHasActiveConnections           Code = "AssignmentHasActiveConnections"
	CodeAssignmentIsActiveInOneOrMoreDelegations Code = "AssignmentIsActiveInOneOrMoreDelegations"
)

// ProblemCode is the top-level code of a composed validation problem.
const ProblemCode = "ValidationFailed"

// Error is one failed check: its code, the parameter paths it concerns,
// and a human-readable detail string.
type Error struct {
	Code   Code     `json:"code"`
	Paths  []string `json:"paths"`
	Detail string   `json:"detail"`
}

// Problem is the composed result of a Validate call: every failed rule's
// contribution, never a partial report. The calling layer renders it as a
// problem-details response; this package carries no HTTP concepts.
type Problem struct {
	Code   string  `json:"code"`
	Errors []Error `json:"errors"`
}

// ErrorBuilder accumulates (code, path, detail) entries for one Validate
// call. Builders are request-scoped: obtain a fresh one per call and never
// share or reuse them.
type ErrorBuilder struct {
	errors []Error
}

// NewErrorBuilder returns an empty builder.
func NewErrorBuilder() *ErrorBuilder {
	return &ErrorBuilder{}
}

// Add appends a single-path error entry.
func (b *ErrorBuilder) Add(code Code, path, detail string) {
	b.errors = append(b.errors, Error{Code: code, Paths: []string{path}, Detail: detail})
}

// AddPaths appends an error entry spanning several parameter paths.
func (b *ErrorBuilder) AddPaths(code Code, paths []string, detail string) {
	b.errors = append(b.errors, Error{Code: code, Paths: paths, Detail: detail})
}

// Empty reports whether no errors were recorded.
func (b *ErrorBuilder) Empty() bool {
	return len(b.errors) == 0
}

// Len returns the number of recorded error entries.
func (b *ErrorBuilder) Len() int {
	return len(b.errors)
}

// Build materializes the accumulated errors into a Problem, or nil when
// the builder is empty.
func (b *ErrorBuilder) Build() *Problem {
	if b.Empty() {
		return nil
	}
	errs := make([]Error, len(b.errors))
	copy(errs, b.errors)
	return &Problem{Code: ProblemCode, Errors: errs}
}
