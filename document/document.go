// Package document provides read-only line access to plain-text documents.
package document

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Position is a zero-based line and character offset. Characters count runes.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range spans from Start to End on the same or later line.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Line is one line of a document without its terminator.
type Line struct {
	Number int
	Text   string
	Range  Range
}

// Document is the line access the outline builder needs.
type Document interface {
	// Name identifies the document, usually its file name or path.
	Name() string
	LineCount() int
	LineAt(i int) Line
}

// Text is an in-memory Document.
type Text struct {
	name  string
	lines []string
}

// New splits content into lines. A trailing newline leaves a final empty
// line, as an editor shows it; empty content has no lines.
func New(name, content string) *Text {
	t := &Text{name: name}
	if content == "" {
		return t
	}
	t.lines = strings.Split(content, "\n")
	for i, line := range t.lines {
		t.lines[i] = strings.TrimSuffix(line, "\r")
	}
	return t
}

// FromLines creates a document from lines that are already split.
func FromLines(name string, lines []string) *Text {
	return &Text{name: name, lines: lines}
}

// Read reads all of r into a document.
func Read(name string, r io.Reader) (*Text, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return New(name, string(data)), nil
}

// Open reads the file at path into a document named by path.
func Open(path string) (*Text, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	return Read(path, f)
}

func (t *Text) Name() string {
	return t.name
}

func (t *Text) LineCount() int {
	return len(t.lines)
}

// LineAt returns line i. It panics if i is out of range, like a slice index.
func (t *Text) LineAt(i int) Line {
	text := t.lines[i]
	return Line{
		Number: i,
		Text:   text,
		Range: Range{
			Start: Position{Line: i, Character: 0},
			End:   Position{Line: i, Character: utf8.RuneCountInString(text)},
		},
	}
}
