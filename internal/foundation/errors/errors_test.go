package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "mdead.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "mdead.yaml" {
			t.Errorf("expected context file=mdead.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := MalformedTreeError("unsupported node").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !IsMalformedTree(err) {
			t.Error("expected malformed tree category")
		}
		if IsFormat(err) {
			t.Error("malformed tree must be distinct from format errors")
		}
		if !err.IsFatal() {
			t.Error("expected malformed tree error to be fatal")
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := FormatError("unexpected EOF").Build()
		err := fmt.Errorf("convert doc.md: %w", inner)

		if !IsFormat(err) {
			t.Error("expected wrapped format error to be detected")
		}
		if GetCategory(err) != CategoryFormat {
			t.Errorf("expected format category, got %s", GetCategory(err))
		}
		if GetSeverity(err) != SeverityFatal {
			t.Errorf("expected fatal severity, got %s", GetSeverity(err))
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("unclassified errors default to internal")
		}
	})

	t.Run("Error string", func(t *testing.T) {
		cause := errors.New("EOF")
		err := WrapError(cause, CategoryFormat, "cannot parse markup").Build()
		if got := err.Error(); got != "[format:error] cannot parse markup: EOF" {
			t.Errorf("unexpected Error(): %s", got)
		}
		if !errors.Is(err, cause) {
			t.Error("expected error to wrap cause")
		}
		if !errors.Is(err, NewError(CategoryFormat, "cannot parse markup").Build()) {
			t.Error("expected Is to match on category and message")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal},
			{"ParseError", ParseError("test"), CategoryParse, SeverityError},
			{"MalformedTreeError", MalformedTreeError("test"), CategoryMalformedTree, SeverityFatal},
			{"FormatError", FormatError("test"), CategoryFormat, SeverityFatal},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityError},
			{"RuntimeError", RuntimeError("test"), CategoryRuntime, SeverityFatal},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
			})
		}
	})

	t.Run("WithContext copies", func(t *testing.T) {
		base := ParseError("bad frontmatter").Build()
		derived := base.WithContext("file", "a.md")

		if _, ok := base.Context().Get("file"); ok {
			t.Error("WithContext must not mutate the original error")
		}
		if v, _ := derived.Context().GetString("file"); v != "a.md" {
			t.Errorf("expected derived context, got %q", v)
		}
	})
}

func TestErrorContext(t *testing.T) {
	ctx1 := make(ErrorContext)
	ctx1 = ctx1.Set("key1", "value1")
	ctx1 = ctx1.Set("shared", "original")

	ctx2 := make(ErrorContext)
	ctx2 = ctx2.Set("key2", 42)
	ctx2 = ctx2.Set("shared", "overridden")

	merged := ctx1.Merge(ctx2)

	if v, _ := merged.GetString("key1"); v != "value1" {
		t.Errorf("expected key1=value1, got %s", v)
	}
	if v, _ := merged.Get("key2"); v != 42 {
		t.Errorf("expected key2=42, got %v", v)
	}
	if v, _ := merged.GetString("shared"); v != "overridden" {
		t.Errorf("expected shared=overridden, got %s", v)
	}
	if _, ok := merged.GetString("key2"); ok {
		t.Error("GetString must reject non-string values")
	}
}
