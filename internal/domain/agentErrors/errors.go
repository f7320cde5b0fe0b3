package agentErrors

import "fmt"

// NotFoundError is returned by the loader when an input path does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Document not found: %s", e.Path)
}

type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("Unsupported file type: %s. Only .txt and .pdf are supported.", e.Extension)
}

// ExtractionError means a supported file could not be read into pages.
type ExtractionError struct {
	Name string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("Could not read %s: %v", e.Name, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IndexNotLoadedError means a search ran against a session index that was never loaded or built.
type IndexNotLoadedError struct {
	SessionId string
}

func (e *IndexNotLoadedError) Error() string {
	return fmt.Sprintf("vector index for session %s is not loaded", e.SessionId)
}

type RetrievalError struct {
	SessionId string
	Err       error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for session %s: %v", e.SessionId, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// TaskClassificationError carries the raw classifier output so it can be diagnosed.
type TaskClassificationError struct {
	Raw    string
	Reason string
}

func (e *TaskClassificationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %q", e.Reason, e.Raw)
	}
	return fmt.Sprintf("Invalid task decision from tool selector: %q", e.Raw)
}
