package outline

import (
	"context"

	"github.com/joeychilson/regexpoutline/document"
	"github.com/joeychilson/regexpoutline/logger"
	"github.com/joeychilson/regexpoutline/rules"
)

// Names and details of the top/end of file marker nodes.
const (
	TopOfFileName   = "TOF"
	TopOfFileDetail = "top of file"
	EndOfFileName   = "EOF"
	EndOfFileDetail = "end of file"
)

// Builder builds outlines from a fixed list of resolved rule sets.
// A Builder is safe for concurrent use; each Build keeps its own state.
type Builder struct {
	sets []rules.RuleSet
	log  logger.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used to report build failures.
func WithLogger(log logger.Logger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// New creates a Builder for the given rule sets.
func New(sets []rules.RuleSet, opts ...Option) *Builder {
	b := &Builder{
		sets: sets,
		log:  logger.Noop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFromSpec parses a serialized rule specification and creates a Builder.
// A malformed specification yields a Builder that outlines nothing.
func NewFromSpec(spec []byte, opts ...Option) *Builder {
	b := New(nil, opts...)
	b.sets = rules.Parse(spec, b.log)
	return b
}

// RuleSets returns the rule sets the builder matches documents against.
func (b *Builder) RuleSets() []rules.RuleSet {
	return b.sets
}

// Build returns the root-level nodes of doc's outline. It never fails:
// documents with no matching rule set, cancelled contexts and internal
// faults all produce an empty outline.
func (b *Builder) Build(ctx context.Context, doc document.Document) (nodes []*Node) {
	if doc == nil {
		return []*Node{}
	}
	if err := ctx.Err(); err != nil {
		return []*Node{}
	}

	var name string
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("failed to create outline", "document", name, "panic", r)
			nodes = []*Node{}
		}
	}()

	name = doc.Name()
	set, ok := rules.Select(b.sets, name)
	if !ok {
		return []*Node{}
	}

	t := newTree()
	lineCount := doc.LineCount()

	if set.ShowTOF && lineCount > 0 {
		t.appendMarker(newNode(TopOfFileName, TopOfFileDetail, 0, doc.LineAt(0)))
	}

	for i := 0; i < lineCount; i++ {
		line := doc.LineAt(i)
		rule, name, ok := set.Match(line.Text)
		if !ok {
			continue
		}
		t.insert(newNode(name, rule.Detail, rule.Level, line))
	}

	if set.ShowEOF && lineCount > 0 {
		t.appendMarker(newNode(EndOfFileName, EndOfFileDetail, 0, doc.LineAt(lineCount-1)))
	}

	return t.roots
}
