// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sanitize

import (
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"slash and colon", "a/b:c", "a_b_c"},
		{"backslash", `a\b`, "a_b"},
		{"asterisk", "a*b", "a_b"},
		{"question mark", "a?b", "a_b"},
		{"quote", `a"b`, "a_b"},
		{"angle brackets", "a<b>c", "a_b_c"},
		{"pipe", "a|b", "a_b"},
		{"clean input unchanged", "Dataset Distillation 2024", "Dataset Distillation 2024"},
		{"empty", "", ""},
		{"all forbidden", `\/*?:"<>|`, "_________"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanPreservesLength(t *testing.T) {
	// Replacement is one-for-one, so sheet name truncation downstream
	// behaves the same before and after cleaning.
	inputs := []string{"a/b:c", `x\y|z`, "plain", `<<>>??`}
	for _, in := range inputs {
		if got := Clean(in); len(got) != len(in) {
			t.Errorf("Clean(%q) changed length: %q", in, got)
		}
	}
}
