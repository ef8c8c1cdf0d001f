// internal/models/themes.go
package models

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"

	dbgen "github.com/tarunkumar2005/fomi/internal/db/generated"
)

// Body text sits directly on the background, but form titles and labels are often large, so we use the AA large-text threshold.
const wcagAAMinContrastRatio = 3.0
const wcagAAContrastNote = "WCAG AA for large text/UI components"
const maxThemeNameLength = 100

// DefaultThemeID is the built-in theme forms fall back to.
const DefaultThemeID = "default"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidTheme = errors.New("invalid theme")
)

var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
var funcColorRegex = regexp.MustCompile(`^(?:rgb|rgba|hsl|hsla)\(\s*-?[0-9.]+(?:deg|%)?(?:\s*[,\s/]\s*-?[0-9.]+%?){2,3}\s*\)$`)
var themeNameRegex = regexp.MustCompile(`^[\p{L}0-9][\p{L}0-9 ()'-]*$`)

var namedColors = map[string]struct{}{
	"transparent": {}, "currentcolor": {}, "black": {}, "white": {}, "gray": {}, "grey": {},
	"red": {}, "orange": {}, "yellow": {}, "green": {}, "blue": {}, "indigo": {}, "purple": {},
	"violet": {}, "pink": {}, "teal": {}, "cyan": {}, "navy": {}, "maroon": {}, "olive": {},
	"silver": {}, "lime": {}, "aqua": {}, "fuchsia": {}, "slategray": {}, "whitesmoke": {},
}

func IsHexColor(value string) bool {
	return hexColorRegex.MatchString(strings.TrimSpace(value))
}

// IsCSSColor reports whether value is a hex color, an rgb()/hsl() function, or a known named color.
func IsCSSColor(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	if hexColorRegex.MatchString(trimmed) {
		return true
	}
	lower := strings.ToLower(trimmed)
	if funcColorRegex.MatchString(lower) {
		return true
	}
	_, ok := namedColors[lower]
	return ok
}

// Scope says who owns a theme.
type Scope string

const (
	ScopeBuiltIn   Scope = "builtin"
	ScopeWorkspace Scope = "workspace"
	ScopeUser      Scope = "user"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeBuiltIn, ScopeWorkspace, ScopeUser:
		return true
	}
	return false
}

type FontSize string

const (
	FontSizeSmall  FontSize = "small"
	FontSizeMedium FontSize = "medium"
	FontSizeLarge  FontSize = "large"
)

func (f FontSize) Valid() bool {
	return f == FontSizeSmall || f == FontSizeMedium || f == FontSizeLarge
}

type Spacing string

const (
	SpacingCompact Spacing = "compact"
	SpacingNormal  Spacing = "normal"
	SpacingRelaxed Spacing = "relaxed"
)

func (s Spacing) Valid() bool {
	return s == SpacingCompact || s == SpacingNormal || s == SpacingRelaxed
}

type Shadow string

const (
	ShadowNone Shadow = "none"
	ShadowSm   Shadow = "sm"
	ShadowMd   Shadow = "md"
	ShadowLg   Shadow = "lg"
)

func (s Shadow) Valid() bool {
	return s == ShadowNone || s == ShadowSm || s == ShadowMd || s == ShadowLg
}

type Size string

const (
	SizeSm Size = "sm"
	SizeMd Size = "md"
	SizeLg Size = "lg"
)

func (s Size) Valid() bool {
	return s == SizeSm || s == SizeMd || s == SizeLg
}

type ButtonStyle string

const (
	ButtonStyleRounded ButtonStyle = "rounded"
	ButtonStyleSharp   ButtonStyle = "sharp"
	ButtonStylePill    ButtonStyle = "pill"
)

func (b ButtonStyle) Valid() bool {
	return b == ButtonStyleRounded || b == ButtonStyleSharp || b == ButtonStylePill
}

type ButtonVariant string

const (
	ButtonVariantSolid   ButtonVariant = "solid"
	ButtonVariantOutline ButtonVariant = "outline"
	ButtonVariantGhost   ButtonVariant = "ghost"
)

func (b ButtonVariant) Valid() bool {
	return b == ButtonVariantSolid || b == ButtonVariantOutline || b == ButtonVariantGhost
}

type InputStyle string

const (
	InputStyleOutlined   InputStyle = "outlined"
	InputStyleFilled     InputStyle = "filled"
	InputStyleUnderlined InputStyle = "underlined"
)

func (i InputStyle) Valid() bool {
	return i == InputStyleOutlined || i == InputStyleFilled || i == InputStyleUnderlined
}

type Colors struct {
	Primary     string `json:"primary" yaml:"primary"`
	Background  string `json:"background" yaml:"background"`
	Card        string `json:"card" yaml:"card"`
	Text        string `json:"text" yaml:"text"`
	TextMuted   string `json:"textMuted" yaml:"textMuted"`
	Border      string `json:"border" yaml:"border"`
	Accent      string `json:"accent" yaml:"accent"`
	Destructive string `json:"destructive" yaml:"destructive"`
	Input       string `json:"input" yaml:"input"`
	Ring        string `json:"ring" yaml:"ring"`
}

type Typography struct {
	HeadingFont   string   `json:"headingFont" yaml:"headingFont"`
	BodyFont      string   `json:"bodyFont" yaml:"bodyFont"`
	FontSize      FontSize `json:"fontSize" yaml:"fontSize"`
	FontWeight    int      `json:"fontWeight" yaml:"fontWeight"`
	LineHeight    float64  `json:"lineHeight" yaml:"lineHeight"`
	LetterSpacing float64  `json:"letterSpacing" yaml:"letterSpacing"`
}

type Layout struct {
	BorderRadius float64 `json:"borderRadius" yaml:"borderRadius"`
	Spacing      Spacing `json:"spacing" yaml:"spacing"`
	Shadow       Shadow  `json:"shadow" yaml:"shadow"`
}

type Buttons struct {
	Style   ButtonStyle   `json:"style" yaml:"style"`
	Size    Size          `json:"size" yaml:"size"`
	Variant ButtonVariant `json:"variant" yaml:"variant"`
}

type InputFields struct {
	Style InputStyle `json:"style" yaml:"style"`
	Size  Size       `json:"size" yaml:"size"`
}

type Theme struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	IsBuiltIn   bool        `json:"isBuiltIn"`
	Scope       Scope       `json:"scope"`
	OwnerID     string      `json:"ownerId,omitempty"`
	Colors      Colors      `json:"colors"`
	Typography  Typography  `json:"typography"`
	Layout      Layout      `json:"layout"`
	Buttons     Buttons     `json:"buttons"`
	InputFields InputFields `json:"inputFields"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type ThemeQueries interface {
	ListBuiltInThemes(ctx context.Context) ([]dbgen.Theme, error)
	ListOwnerThemes(ctx context.Context, arg dbgen.ListOwnerThemesParams) ([]dbgen.Theme, error)
	GetScopedTheme(ctx context.Context, arg dbgen.GetScopedThemeParams) (dbgen.Theme, error)
}

// DefaultTheme is the hardcoded fallback used when a form's base theme cannot be found.
func DefaultTheme() Theme {
	return Theme{
		ID:          DefaultThemeID,
		Name:        "Default",
		Description: "Clean, neutral styling that works for any form",
		Category:    "professional",
		IsBuiltIn:   true,
		Scope:       ScopeBuiltIn,
		Colors: Colors{
			Primary:     "#3b82f6",
			Background:  "#ffffff",
			Card:        "#ffffff",
			Text:        "#0f172a",
			TextMuted:   "#64748b",
			Border:      "#e2e8f0",
			Accent:      "#f1f5f9",
			Destructive: "#ef4444",
			Input:       "#e2e8f0",
			Ring:        "#3b82f6",
		},
		Typography: Typography{
			HeadingFont:   "Inter",
			BodyFont:      "Inter",
			FontSize:      FontSizeMedium,
			FontWeight:    400,
			LineHeight:    1.5,
			LetterSpacing: 0,
		},
		Layout: Layout{
			BorderRadius: 8,
			Spacing:      SpacingNormal,
			Shadow:       ShadowSm,
		},
		Buttons: Buttons{
			Style:   ButtonStyleRounded,
			Size:    SizeMd,
			Variant: ButtonVariantSolid,
		},
		InputFields: InputFields{
			Style: InputStyleOutlined,
			Size:  SizeMd,
		},
	}
}

// SameTokens reports whether both themes carry identical design tokens, ignoring metadata.
func (t Theme) SameTokens(other Theme) bool {
	return t.Colors == other.Colors &&
		t.Typography == other.Typography &&
		t.Layout == other.Layout &&
		t.Buttons == other.Buttons &&
		t.InputFields == other.InputFields
}

func (t Theme) Validate() error {
	if err := ValidateThemeName(t.Name); err != nil {
		return err
	}
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if !t.Scope.Valid() {
		return fmt.Errorf("scope must be one of builtin, workspace, user")
	}
	if t.Scope == ScopeBuiltIn && t.OwnerID != "" {
		return fmt.Errorf("built-in themes must not have an owner")
	}
	if t.Scope != ScopeBuiltIn && t.OwnerID == "" {
		return fmt.Errorf("%s themes must have an owner", t.Scope)
	}
	if t.IsBuiltIn != (t.Scope == ScopeBuiltIn) {
		return fmt.Errorf("isBuiltIn must match scope")
	}
	return t.ValidateTokens()
}

// ValidateTokens checks the five partitions only.
func (t Theme) ValidateTokens() error {
	if err := t.Colors.Validate(); err != nil {
		return err
	}
	if err := t.Typography.Validate(); err != nil {
		return err
	}
	if err := t.Layout.Validate(); err != nil {
		return err
	}
	if err := t.Buttons.Validate(); err != nil {
		return err
	}
	return t.InputFields.Validate()
}

func ValidateThemeName(name string) error {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return fmt.Errorf("name is required")
	}
	if trimmedName != name {
		return fmt.Errorf("name must not have leading or trailing whitespace")
	}
	if utf8.RuneCountInString(trimmedName) > maxThemeNameLength {
		return fmt.Errorf("name must be %d characters or fewer", maxThemeNameLength)
	}
	if !themeNameRegex.MatchString(trimmedName) {
		return fmt.Errorf("name may only contain letters, numbers, spaces, hyphens, apostrophes, and parentheses")
	}
	return nil
}

func (c Colors) Validate() error {
	colorFields := []struct {
		name  string
		value string
	}{
		{"primary", c.Primary},
		{"background", c.Background},
		{"card", c.Card},
		{"text", c.Text},
		{"textMuted", c.TextMuted},
		{"border", c.Border},
		{"accent", c.Accent},
		{"destructive", c.Destructive},
		{"input", c.Input},
		{"ring", c.Ring},
	}
	for _, field := range colorFields {
		if !IsCSSColor(field.value) {
			return fmt.Errorf("colors.%s must be a hex, rgb(), hsl() or named CSS color", field.name)
		}
	}
	return validateTextContrast(c.Text, c.Background)
}

func (t Typography) Validate() error {
	if strings.TrimSpace(t.HeadingFont) == "" {
		return fmt.Errorf("typography.headingFont is required")
	}
	if strings.TrimSpace(t.BodyFont) == "" {
		return fmt.Errorf("typography.bodyFont is required")
	}
	if !t.FontSize.Valid() {
		return fmt.Errorf("typography.fontSize must be one of small, medium, large")
	}
	if t.FontWeight < 100 || t.FontWeight > 900 {
		return fmt.Errorf("typography.fontWeight must be between 100 and 900")
	}
	if !inRange(t.LineHeight, 0.8, 3) {
		return fmt.Errorf("typography.lineHeight must be between 0.8 and 3")
	}
	if !inRange(t.LetterSpacing, -5, 5) {
		return fmt.Errorf("typography.letterSpacing must be between -5 and 5")
	}
	return nil
}

func (l Layout) Validate() error {
	if !inRange(l.BorderRadius, 0, 64) {
		return fmt.Errorf("layout.borderRadius must be between 0 and 64")
	}
	if !l.Spacing.Valid() {
		return fmt.Errorf("layout.spacing must be one of compact, normal, relaxed")
	}
	if !l.Shadow.Valid() {
		return fmt.Errorf("layout.shadow must be one of none, sm, md, lg")
	}
	return nil
}

func (b Buttons) Validate() error {
	if !b.Style.Valid() {
		return fmt.Errorf("buttons.style must be one of rounded, sharp, pill")
	}
	if !b.Size.Valid() {
		return fmt.Errorf("buttons.size must be one of sm, md, lg")
	}
	if !b.Variant.Valid() {
		return fmt.Errorf("buttons.variant must be one of solid, outline, ghost")
	}
	return nil
}

func (i InputFields) Validate() error {
	if !i.Style.Valid() {
		return fmt.Errorf("inputFields.style must be one of outlined, filled, underlined")
	}
	if !i.Size.Valid() {
		return fmt.Errorf("inputFields.size must be one of sm, md, lg")
	}
	return nil
}

func inRange(value, low, high float64) bool {
	return !math.IsNaN(value) && value >= low && value <= high
}

func GetBuiltInThemes(ctx context.Context, queries ThemeQueries) ([]Theme, error) {
	rows, err := queries.ListBuiltInThemes(ctx)
	if err != nil {
		return nil, err
	}
	return themesFromDB(rows)
}

func GetOwnerThemes(ctx context.Context, queries ThemeQueries, scope Scope, ownerID string) ([]Theme, error) {
	rows, err := queries.ListOwnerThemes(ctx, dbgen.ListOwnerThemesParams{
		Scope:   string(scope),
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, err
	}
	return themesFromDB(rows)
}

func themesFromDB(rows []dbgen.Theme) ([]Theme, error) {
	results := make([]Theme, 0, len(rows))
	for _, row := range rows {
		theme, err := ThemeFromDB(row)
		if err != nil {
			return nil, err
		}
		results = append(results, theme)
	}
	return results, nil
}

func ThemeFromDB(row dbgen.Theme) (Theme, error) {
	theme := Theme{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Category:    row.Category,
		Scope:       Scope(row.Scope),
		IsBuiltIn:   row.Scope == string(ScopeBuiltIn),
		OwnerID:     row.OwnerID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := decodePartitionColumns(&theme, row.Colors, row.Typography, row.Layout, row.Buttons, row.InputFields); err != nil {
		return Theme{}, fmt.Errorf("theme %q: %w", row.ID, err)
	}
	return theme, nil
}

func validateTextContrast(textColor, backgroundColor string) error {
	ratio, ok := contrastRatio(textColor, backgroundColor)
	if !ok {
		// Functional and named colors are not checked.
		return nil
	}
	if ratio < wcagAAMinContrastRatio {
		return fmt.Errorf(
			"colors.text must have contrast ratio >= %.1f with colors.background (%s); got %.2f",
			wcagAAMinContrastRatio,
			wcagAAContrastNote,
			ratio,
		)
	}
	return nil
}

// ContrastRatio returns the WCAG contrast ratio of two hex colors.
func ContrastRatio(a, b string) (float64, error) {
	ratio, ok := contrastRatio(a, b)
	if !ok {
		return 0, fmt.Errorf("contrast needs two #rgb or #rrggbb colors, got %q and %q", a, b)
	}
	return ratio, nil
}

func contrastRatio(a, b string) (float64, bool) {
	aL, ok := relativeLuminance(a)
	if !ok {
		return 0, false
	}
	bL, ok := relativeLuminance(b)
	if !ok {
		return 0, false
	}
	lightest := math.Max(aL, bL)
	darkest := math.Min(aL, bL)
	return (lightest + 0.05) / (darkest + 0.05), true
}

func relativeLuminance(hexColor string) (float64, bool) {
	c, err := colorful.Hex(strings.TrimSpace(hexColor))
	if err != nil {
		return 0, false
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b, true
}
