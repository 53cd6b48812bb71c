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
			WithContext("file", "assetrev.yaml").
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
		if !exists || file != "assetrev.yaml" {
			t.Errorf("expected context file=assetrev.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if err.CanRetry() {
			t.Error("expected config error to not be retryable")
		}
		if !err.IsFatal() {
			t.Error("expected config error to be fatal")
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := RevisionError("naming failed").Build()
		wrapped := fmt.Errorf("run: %w", inner)

		if !HasCategory(wrapped, CategoryRevision) {
			t.Error("expected wrapped error to keep revision category")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified error to map to internal")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("connection refused")
	err := WrapError(originalErr, CategoryNetwork, "publish failed").
		Warning().
		Retryable().
		WithContext("subject", "assetrev.runs").
		Build()

	if err.Severity() != SeverityWarning {
		t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
	}
	if err.RetryStrategy() != RetryBackoff {
		t.Errorf("expected retry strategy %s, got %s", RetryBackoff, err.RetryStrategy())
	}
	if !errors.Is(err, originalErr) {
		t.Error("expected error to wrap original error")
	}
	if !err.CanRetry() {
		t.Error("expected backoff error to be retryable")
	}
	want := "[network:warning] publish failed: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWithContextDoesNotMutateOriginal(t *testing.T) {
	base := FileSystemError("read failed").WithContext("path", "a.css").Build()
	derived := base.WithContext("path", "b.css")

	if p, _ := base.Context().GetString("path"); p != "a.css" {
		t.Errorf("base context changed to %q", p)
	}
	if p, _ := derived.Context().GetString("path"); p != "b.css" {
		t.Errorf("derived context = %q, want b.css", p)
	}
}

func TestErrorContextMerge(t *testing.T) {
	a := ErrorContext{"x": 1, "y": 2}
	b := ErrorContext{"y": 3}
	merged := a.Merge(b)

	if merged["x"] != 1 || merged["y"] != 3 {
		t.Errorf("unexpected merge result: %v", merged)
	}
	if a["y"] != 2 {
		t.Error("merge must not modify receiver")
	}
}
