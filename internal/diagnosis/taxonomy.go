// Package diagnosis classifies wrong answers against a fixed error taxonomy.
package diagnosis

// ErrorType is one entry of the error taxonomy.
type ErrorType struct {
	ID    string
	Label string
	Cause string
	Fix   string
}

// registry is the package-level error-type registry, keyed by ID.
var registry map[string]*ErrorType

func init() {
	registry = make(map[string]*ErrorType, len(seedErrorTypes))
	for i := range seedErrorTypes {
		e := &seedErrorTypes[i]
		registry[e.ID] = e
	}
}

// GetErrorType returns an error type by ID, or nil if not found.
func GetErrorType(id string) *ErrorType {
	return registry[id]
}

// assignmentOrder is the round-robin order in which wrong answers are
// given error types.
var assignmentOrder = []string{
	"concept-gap",
	"calculation-slip",
	"misreading",
	"time-pressure",
	"application-gap",
}

// errorTypeAt returns the error type assigned to the i-th wrong answer.
func errorTypeAt(i int) *ErrorType {
	return GetErrorType(assignmentOrder[i%len(assignmentOrder)])
}
