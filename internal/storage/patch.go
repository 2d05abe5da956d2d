package storage

import (
	"strings"
	"time"
)

// Patch accumulates column assignments for a partial UPDATE. Columns keep
// insertion order so generated SQL is deterministic.
type Patch struct {
	cols []string
	args []any
}

func NewPatch() *Patch {
	return &Patch{}
}

// Set records an assignment for col. Setting the same column twice keeps
// both; callers are expected to set each column once.
func (p *Patch) Set(col string, value any) *Patch {
	p.cols = append(p.cols, col)
	p.args = append(p.args, value)
	return p
}

// SetTime records a timestamp assignment in the store's canonical format.
func (p *Patch) SetTime(col string, t time.Time) *Patch {
	return p.Set(col, formatTime(t))
}

// Empty reports whether no assignments were recorded.
func (p *Patch) Empty() bool {
	return len(p.cols) == 0
}

// Fields returns the recorded column names and values in order. Fakes and
// tests use this to replay a patch against in-memory rows.
func (p *Patch) Fields() ([]string, []any) {
	return p.cols, p.args
}

// setClause renders "col1 = ?, col2 = ?" plus the argument list, appending
// an updated_at assignment stamped with now.
func (p *Patch) setClause(now string) (string, []any) {
	var b strings.Builder
	for _, c := range p.cols {
		b.WriteString(c)
		b.WriteString(" = ?, ")
	}
	b.WriteString("updated_at = ?")
	args := make([]any, 0, len(p.args)+1)
	args = append(args, p.args...)
	args = append(args, now)
	return b.String(), args
}
