package diagnostics

// Reporter is the single entry point through which every fatal condition is
// raised. Issue returns the error so callers can propagate it unchanged.
type Reporter interface {
	Issue(code ErrorCode, pos Position, message string) error
}

// Bag records every issued diagnostic in order. It belongs to exactly one
// session and is not safe for concurrent use.
type Bag struct {
	errs []*DiagnosticError
}

func NewBag() *Bag {
	return &Bag{}
}

func (b *Bag) Issue(code ErrorCode, pos Position, message string) error {
	e := NewError(code, pos, message)
	b.errs = append(b.errs, e)
	return e
}

// Add records an already-built diagnostic.
func (b *Bag) Add(e *DiagnosticError) error {
	b.errs = append(b.errs, e)
	return e
}

func (b *Bag) HasErrors() bool { return len(b.errs) > 0 }

// Err returns the first recorded fault, or nil.
func (b *Bag) Err() error {
	if len(b.errs) == 0 {
		return nil
	}
	return b.errs[0]
}

// Errors returns a copy of the recorded diagnostics.
func (b *Bag) Errors() []*DiagnosticError {
	out := make([]*DiagnosticError, len(b.errs))
	copy(out, b.errs)
	return out
}

// Reset drops everything recorded so far.
func (b *Bag) Reset() {
	b.errs = b.errs[:0]
}
