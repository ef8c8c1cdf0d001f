package models

import (
	"math"
	"strings"
	"testing"
)

func TestIsHexColor(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "empty", value: "", want: false},
		{name: "whitespace", value: "   ", want: false},
		{name: "missing_hash", value: "AABBCC", want: false},
		{name: "short_hex", value: "#ABC", want: true},
		{name: "short_hex_alpha", value: "#ABCD", want: true},
		{name: "five_digits", value: "#ABCDE", want: false},
		{name: "long_hex", value: "#AABBCCDD", want: true},
		{name: "invalid_char", value: "#AABBCG", want: false},
		{name: "lowercase_hex", value: "#aabbcc", want: true},
		{name: "uppercase_hex", value: "#AABBCC", want: true},
		{name: "trimmed_hex", value: "  #AABBCC  ", want: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsHexColor(test.value); got != test.want {
				t.Fatalf("IsHexColor(%q) = %t, want %t", test.value, got, test.want)
			}
		})
	}
}

func TestIsCSSColor(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "#fff", want: true},
		{value: "rgb(255, 0, 0)", want: true},
		{value: "rgba(255, 0, 0, 0.5)", want: true},
		{value: "hsl(210deg 40% 50%)", want: true},
		{value: "HSLA(210, 40%, 50%, 0.3)", want: true},
		{value: "Transparent", want: true},
		{value: "rebeccapurple-ish", want: false},
		{value: "rgb(1)", want: false},
		{value: "url(evil)", want: false},
		{value: "", want: false},
	}

	for _, test := range tests {
		t.Run(test.value, func(t *testing.T) {
			if got := IsCSSColor(test.value); got != test.want {
				t.Fatalf("IsCSSColor(%q) = %t, want %t", test.value, got, test.want)
			}
		})
	}
}

func TestDefaultThemeIsValid(t *testing.T) {
	theme := DefaultTheme()
	if err := theme.Validate(); err != nil {
		t.Fatalf("DefaultTheme().Validate() error = %v", err)
	}
	if theme.ID != DefaultThemeID || !theme.IsBuiltIn {
		t.Fatalf("DefaultTheme() = %q builtIn=%t", theme.ID, theme.IsBuiltIn)
	}
}

func TestThemeValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Theme)
		wantErr string
	}{
		{name: "valid", mutate: func(*Theme) {}},
		{name: "empty_name", mutate: func(th *Theme) { th.Name = "" }, wantErr: "name is required"},
		{name: "padded_name", mutate: func(th *Theme) { th.Name = " Ocean" }, wantErr: "leading or trailing"},
		{name: "long_name", mutate: func(th *Theme) { th.Name = strings.Repeat("a", 101) }, wantErr: "100 characters"},
		{name: "symbol_name", mutate: func(th *Theme) { th.Name = "Ocean!" }, wantErr: "may only contain"},
		{name: "unicode_name", mutate: func(th *Theme) { th.Name = "Café (dark)" }},
		{name: "missing_id", mutate: func(th *Theme) { th.ID = "" }, wantErr: "id is required"},
		{name: "bad_scope", mutate: func(th *Theme) { th.Scope = "team" }, wantErr: "scope must be"},
		{name: "builtin_with_owner", mutate: func(th *Theme) { th.OwnerID = "u1" }, wantErr: "must not have an owner"},
		{
			name: "user_without_owner",
			mutate: func(th *Theme) {
				th.Scope = ScopeUser
				th.IsBuiltIn = false
			},
			wantErr: "user themes must have an owner",
		},
		{
			name: "builtin_flag_mismatch",
			mutate: func(th *Theme) {
				th.Scope = ScopeWorkspace
				th.OwnerID = "w1"
			},
			wantErr: "isBuiltIn must match scope",
		},
		{name: "bad_color", mutate: func(th *Theme) { th.Colors.Ring = "blueish" }, wantErr: "colors.ring"},
		{
			name: "low_contrast",
			mutate: func(th *Theme) {
				th.Colors.Text = "#eeeeee"
				th.Colors.Background = "#ffffff"
			},
			wantErr: "contrast ratio",
		},
		{name: "named_colors_skip_contrast", mutate: func(th *Theme) { th.Colors.Text = "white" }},
		{name: "font_weight", mutate: func(th *Theme) { th.Typography.FontWeight = 950 }, wantErr: "fontWeight"},
		{name: "line_height", mutate: func(th *Theme) { th.Typography.LineHeight = 0.5 }, wantErr: "lineHeight"},
		{name: "nan_letter_spacing", mutate: func(th *Theme) { th.Typography.LetterSpacing = math.NaN() }, wantErr: "letterSpacing"},
		{name: "font_size", mutate: func(th *Theme) { th.Typography.FontSize = "huge" }, wantErr: "fontSize"},
		{name: "heading_font", mutate: func(th *Theme) { th.Typography.HeadingFont = " " }, wantErr: "headingFont"},
		{name: "border_radius", mutate: func(th *Theme) { th.Layout.BorderRadius = 65 }, wantErr: "borderRadius"},
		{name: "shadow", mutate: func(th *Theme) { th.Layout.Shadow = "xl" }, wantErr: "shadow"},
		{name: "button_variant", mutate: func(th *Theme) { th.Buttons.Variant = "link" }, wantErr: "buttons.variant"},
		{name: "input_style", mutate: func(th *Theme) { th.InputFields.Style = "boxed" }, wantErr: "inputFields.style"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			theme := DefaultTheme()
			test.mutate(&theme)
			err := theme.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("Validate() error = %v, want it to contain %q", err, test.wantErr)
			}
		})
	}
}

func TestContrastRatio(t *testing.T) {
	ratio, err := ContrastRatio("#000000", "#ffffff")
	if err != nil {
		t.Fatalf("ContrastRatio() error = %v", err)
	}
	if math.Abs(ratio-21) > 0.01 {
		t.Fatalf("ContrastRatio(black, white) = %.3f, want 21", ratio)
	}

	same, err := ContrastRatio("#3b82f6", "#3B82F6")
	if err != nil {
		t.Fatalf("ContrastRatio() error = %v", err)
	}
	if math.Abs(same-1) > 0.001 {
		t.Fatalf("ContrastRatio(x, x) = %.3f, want 1", same)
	}

	if _, err := ContrastRatio("red", "#ffffff"); err == nil {
		t.Fatalf("ContrastRatio(named) error = nil, want error")
	}
}

func TestSameTokensIgnoresMetadata(t *testing.T) {
	a := DefaultTheme()
	b := DefaultTheme()
	b.ID = "copy"
	b.Name = "Copy of Default"
	b.Scope = ScopeUser
	if !a.SameTokens(b) {
		t.Fatalf("SameTokens() = false for metadata-only difference")
	}
	b.Layout.Spacing = SpacingRelaxed
	if a.SameTokens(b) {
		t.Fatalf("SameTokens() = true after token change")
	}
}

func TestValidateThemeNameCountsCharacters(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "japanese 40 characters", input: strings.Repeat("青", 40)},
		{name: "accented 100 characters", input: strings.Repeat("é", 100)},
		{name: "accented 101 characters", input: strings.Repeat("é", 101), wantErr: true},
		{name: "ascii 101 characters", input: strings.Repeat("a", 101), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateThemeName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateThemeName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
