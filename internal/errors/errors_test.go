package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "watch error",
			code:    "E001",
			wantMsg: "Watch root is not accessible",
			wantCat: CategoryWatch,
		},
		{
			name:    "cycle error",
			code:    "E102",
			wantMsg: "Dependency cycle detected",
			wantCat: CategoryCache,
		},
		{
			name:    "compiler missing",
			code:    "E110",
			wantMsg: "PohLang compiler not found",
			wantCat: CategoryBuild,
		},
		{
			name:    "handshake timeout",
			code:    "E201",
			wantMsg: "Client handshake timeout",
			wantCat: CategoryProtocol,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryBuild, "file %q not found", "main.poh")
	if err.Message != `file "main.poh" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryBuild {
		t.Errorf("Category = %q, want %q", err.Category, CategoryBuild)
	}
}

func TestPlhubError_Error(t *testing.T) {
	err := New("E102")
	want := "E102: Dependency cycle detected"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	// Without code
	err2 := &PlhubError{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	inner := errors.New("permission denied")
	err := New("E001").Wrap(inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("Error() = %q, should contain wrapped message", err.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E101") != nil {
		t.Error("FromError(nil) should be nil")
	}

	pe := New("E103")
	if got := FromError(pe, "E101"); got != pe {
		t.Error("FromError should pass through PlhubError unchanged")
	}

	plain := errors.New("disk full")
	wrapped := FromError(plain, "E103")
	if wrapped.Code != "E103" {
		t.Errorf("Code = %q, want E103", wrapped.Code)
	}
	if !errors.Is(wrapped, plain) {
		t.Error("wrapped error should unwrap to the original")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("E110").WithSuggestion("install the toolchain").Format()
	for _, want := range []string{"ERROR", "E110", "Hint:", "install the toolchain", "Learn more:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("aaa bbb ccc ddd", 7)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0] != "aaa bbb" || lines[1] != "ccc ddd" {
		t.Errorf("unexpected wrap: %v", lines)
	}
}
