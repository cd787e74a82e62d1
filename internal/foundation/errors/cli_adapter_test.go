package errors

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "malformed tree", err: MalformedTreeError("unknown node").Build(), expected: 8},
		{name: "format", err: FormatError("unparsable").Build(), expected: 9},
		{
			name:     "wrapped classified",
			err:      fmt.Errorf("convert a.md: %w", FormatError("unparsable").Build()),
			expected: 9,
		},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	err := MalformedTreeError("unsupported node").WithContext("type", "*mdast.Foo").Build()

	if got := quiet.FormatError(err); got != "Error: unsupported node" {
		t.Errorf("quiet FormatError() = %q", got)
	}
	if got := verbose.FormatError(err); !strings.Contains(got, "[malformed_tree:fatal]") {
		t.Errorf("verbose FormatError() = %q", got)
	}
	if got := quiet.FormatError(InternalError("boom").Build()); !strings.Contains(got, "use -v") {
		t.Errorf("internal FormatError() = %q", got)
	}
	if got := quiet.FormatError(&customError{msg: "plain"}); got != "Error: plain" {
		t.Errorf("unclassified FormatError() = %q", got)
	}
	if got := quiet.FormatError(nil); got != "" {
		t.Errorf("nil FormatError() = %q", got)
	}
}

func TestCLIErrorAdapter_LogError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	adapter := NewCLIErrorAdapter(false, logger)

	err := FormatError("markup rejected").WithContext("file", "a.md").Build()
	if !adapter.shouldLog(err) {
		t.Fatal("fatal errors must be logged")
	}
	adapter.logError(err)

	out := buf.String()
	for _, want := range []string{"level=ERROR", "markup rejected", "category=format", "file=a.md"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}

	if adapter.shouldLog(ParseError("soft").Build()) {
		t.Error("non-fatal errors are only logged in verbose mode")
	}
}
