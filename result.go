package assistant

// Result is the outcome of one aggregation. Text is the concatenation of all
// content fragments in arrival order. When Err is set, Text is empty.
type Result struct {
	Text string
	Err  error
}

// Kind returns the ErrorKind of the result's error, KindNone on success.
func (r Result) Kind() ErrorKind {
	return KindOf(r.Err)
}

// OK reports whether the result completed without error.
func (r Result) OK() bool { return r.Err == nil }

// Cancelled reports whether the result stopped because the caller cancelled.
func (r Result) Cancelled() bool { return r.Kind() == KindCancelled }
