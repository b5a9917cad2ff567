package adcsv

import "fmt"

// ParseFailure reports input the tokenizer could not read, such as unbalanced quoting.
// No rows are produced when it is returned.
type ParseFailure struct {
	Err error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("tokenize input: %v", e.Err)
}

func (e *ParseFailure) Unwrap() error {
	return e.Err
}

// Detail returns the tokenizer's own message.
func (e *ParseFailure) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// LimitError reports input larger than the configured byte or row cap.
type LimitError struct {
	Limit  string
	Max    int64
	Actual int64
}

func (e *LimitError) Error() string {
	if e.Actual > 0 {
		return fmt.Sprintf("input exceeds %s limit: %d > %d", e.Limit, e.Actual, e.Max)
	}
	return fmt.Sprintf("input exceeds %s limit of %d", e.Limit, e.Max)
}
