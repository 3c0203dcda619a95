package cleaner

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fenilsonani/codeclean/internal/scanner"
)

// ErrorKind is the closed set of error severities
type ErrorKind int

const (
	// KindFatal aborts the run before anything is modified
	KindFatal ErrorKind = iota
	// KindPerItem fails one file, directory or build file; the run continues
	KindPerItem
	// KindInfo is benign: the item was already gone or had nothing to do
	KindInfo
)

func (k ErrorKind) String() string {
	switch k {
	case KindFatal:
		return "fatal"
	case KindPerItem:
		return "per-item"
	case KindInfo:
		return "info"
	default:
		return "unknown"
	}
}

// KindOf classifies an error returned by this package or the scanner
func KindOf(err error) ErrorKind {
	var safetyErr *SafetyError
	var delErr *DeletionError
	switch {
	case err == nil:
		return KindInfo
	case errors.As(err, &safetyErr), errors.Is(err, scanner.ErrInvalidRoot):
		return KindFatal
	case errors.As(err, &delErr):
		if delErr.Reason == ErrorFileNotFound {
			return KindInfo
		}
		return KindPerItem
	default:
		return KindFatal
	}
}

// ViolationKind names a safety rule
type ViolationKind int

const (
	ViolationTooManyFiles ViolationKind = iota
	ViolationBuildFile
	ViolationImportantTestDirectory
)

// Violation is one failed safety rule
type Violation struct {
	Kind    ViolationKind
	Path    string
	Message string
}

// SafetyError is returned when the safety gate refuses to run. Nothing has
// been modified when it is returned.
type SafetyError struct {
	Violations []Violation
}

// Error implements the error interface
func (e *SafetyError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "safety check failed: " + strings.Join(msgs, "; ")
}

// Has reports whether the error contains a violation of kind k
func (e *SafetyError) Has(k ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == k {
			return true
		}
	}
	return false
}

// ErrorReason categorizes why a deletion failed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorFileInUse
	ErrorFileNotFound
	ErrorIsDirectory
	ErrorNotEmpty
	ErrorInvalidPath
	ErrorUnknown
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorFileInUse:
		return "File is in use"
	case ErrorFileNotFound:
		return "File not found"
	case ErrorIsDirectory:
		return "Is a directory"
	case ErrorNotEmpty:
		return "Directory not empty"
	case ErrorInvalidPath:
		return "Invalid path"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// DeletionError represents a detailed deletion error
type DeletionError struct {
	Path      string
	Reason    ErrorReason
	Original  error
	Retryable bool
}

// Error implements the error interface
func (e *DeletionError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
}

// Unwrap returns the underlying error
func (e *DeletionError) Unwrap() error {
	return e.Original
}

// UserMessage returns a user-friendly error message
func (e *DeletionError) UserMessage() string {
	switch e.Reason {
	case ErrorPermissionDenied:
		return fmt.Sprintf("⚠️  Permission denied: %s", e.Path)
	case ErrorFileInUse:
		return fmt.Sprintf("⚠️  File is being used: %s (stop the Gradle daemon or IDE and try again)", e.Path)
	case ErrorFileNotFound:
		return fmt.Sprintf("ℹ️  Already deleted: %s", e.Path)
	case ErrorIsDirectory:
		return fmt.Sprintf("⚠️  Expected a file but found a directory: %s", e.Path)
	case ErrorNotEmpty:
		return fmt.Sprintf("⚠️  Directory is no longer empty: %s", e.Path)
	case ErrorInvalidPath:
		return fmt.Sprintf("❌ Invalid or unsafe path: %s (%v)", e.Path, e.Original)
	default:
		return fmt.Sprintf("❌ Error deleting %s: %v", e.Path, e.Original)
	}
}

// CategorizeError analyzes an error and returns a categorized DeletionError
func CategorizeError(path string, err error) *DeletionError {
	if err == nil {
		return nil
	}

	delErr := &DeletionError{
		Path:     path,
		Original: err,
		Reason:   ErrorUnknown,
	}

	if os.IsNotExist(err) {
		delErr.Reason = ErrorFileNotFound
		return delErr
	}

	if os.IsPermission(err) {
		delErr.Reason = ErrorPermissionDenied
		return delErr
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM:
			delErr.Reason = ErrorPermissionDenied
		case syscall.EBUSY, syscall.ETXTBSY:
			delErr.Reason = ErrorFileInUse
			delErr.Retryable = true
		case syscall.ENOENT:
			delErr.Reason = ErrorFileNotFound
		case syscall.EISDIR:
			delErr.Reason = ErrorIsDirectory
		case syscall.ENOTEMPTY, syscall.EEXIST:
			delErr.Reason = ErrorNotEmpty
		}
	}

	return delErr
}

// GroupErrors groups deletion errors by reason
func GroupErrors(errs []*DeletionError) map[ErrorReason][]*DeletionError {
	grouped := make(map[ErrorReason][]*DeletionError)
	for _, err := range errs {
		grouped[err.Reason] = append(grouped[err.Reason], err)
	}
	return grouped
}

// FormatErrorSummary creates a user-friendly summary of errors
func FormatErrorSummary(errs []*DeletionError) string {
	if len(errs) == 0 {
		return ""
	}

	grouped := GroupErrors(errs)
	var b strings.Builder
	b.WriteString("\n⚠️  Issues encountered:\n")

	if perms, ok := grouped[ErrorPermissionDenied]; ok {
		fmt.Fprintf(&b, "   ├─ Permission denied: %d items\n", len(perms))
		b.WriteString("   │  └─ Tip: check ownership of the project files\n")
	}

	if busy, ok := grouped[ErrorFileInUse]; ok {
		fmt.Fprintf(&b, "   ├─ In use: %d items\n", len(busy))
		b.WriteString("   │  └─ Tip: stop the Gradle daemon (./gradlew --stop) and retry\n")
	}

	if notEmpty, ok := grouped[ErrorNotEmpty]; ok {
		fmt.Fprintf(&b, "   ├─ Changed since scan: %d directories\n", len(notEmpty))
	}

	if invalid, ok := grouped[ErrorInvalidPath]; ok {
		fmt.Fprintf(&b, "   ├─ Refused as unsafe: %d items\n", len(invalid))
	}

	if unknown, ok := grouped[ErrorUnknown]; ok {
		fmt.Fprintf(&b, "   └─ Other errors: %d items\n", len(unknown))
	}

	return b.String()
}
