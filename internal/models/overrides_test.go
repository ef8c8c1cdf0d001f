package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const fullColors = `{"primary":"#111111","background":"#ffffff","card":"#ffffff","text":"#000000","textMuted":"#666666","border":"#dddddd","accent":"#eeeeee","destructive":"#ff0000","input":"#dddddd","ring":"#111111"}`

func TestDecodeOverrides(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Partition
		wantErr string
	}{
		{name: "empty object", input: `{}`, want: []Partition{}},
		{name: "null partition is absent", input: `{"colors":null}`, want: []Partition{}},
		{name: "colors only", input: `{"colors":` + fullColors + `}`, want: []Partition{PartitionColors}},
		{
			name:  "two partitions",
			input: `{"buttons":{"style":"pill","size":"lg","variant":"ghost"},"layout":{"borderRadius":0,"spacing":"compact","shadow":"none"}}`,
			want:  []Partition{PartitionLayout, PartitionButtons},
		},
		{name: "not an object", input: `[]`, wantErr: "must be a JSON object"},
		{name: "null document", input: `null`, wantErr: "must be a JSON object"},
		{name: "unknown partition", input: `{"animations":{}}`, wantErr: `unknown partition "animations"`},
		{name: "unknown null partition", input: `{"animations":null}`, wantErr: `unknown partition "animations"`},
		{name: "missing field", input: `{"buttons":{"style":"pill","size":"lg"}}`, wantErr: "buttons.variant is required"},
		{name: "extra field", input: `{"inputFields":{"style":"filled","size":"sm","glow":true}}`, wantErr: "unknown field"},
		{name: "wrong type", input: `{"layout":{"borderRadius":"8px","spacing":"normal","shadow":"sm"}}`, wantErr: "layout"},
		{name: "partition not object", input: `{"layout":4}`, wantErr: "layout must be an object"},
		{name: "invalid value", input: `{"buttons":{"style":"pill","size":"xl","variant":"ghost"}}`, wantErr: "buttons.size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeOverrides([]byte(tt.input))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("DecodeOverrides() error = nil, want %q", tt.wantErr)
				}
				if !errors.Is(err, ErrInvalidTheme) {
					t.Fatalf("DecodeOverrides() error = %v, want ErrInvalidTheme", err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("DecodeOverrides() error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeOverrides() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Partitions()); diff != "" {
				t.Fatalf("partitions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyToReplacesWholePartition(t *testing.T) {
	base := DefaultTheme()
	// Only the variant is meaningful to the caller; the other fields are zero.
	overrides := ThemeOverrides{Buttons: &Buttons{Variant: ButtonVariantGhost}}

	got := overrides.ApplyTo(base)
	if got.Buttons.Variant != ButtonVariantGhost {
		t.Fatalf("variant = %q, want ghost", got.Buttons.Variant)
	}
	if got.Buttons.Style != "" || got.Buttons.Size != "" {
		t.Fatalf("buttons = %+v, want omitted fields empty rather than inherited", got.Buttons)
	}
	if got.Colors != base.Colors || got.Typography != base.Typography {
		t.Fatalf("untouched partitions changed")
	}
}

func TestMergeAndClone(t *testing.T) {
	older := ThemeOverrides{
		Colors: &Colors{Primary: "#000000"},
		Layout: &Layout{Spacing: SpacingCompact},
	}
	newer := ThemeOverrides{Layout: &Layout{Spacing: SpacingRelaxed}}

	merged := older.Merge(newer)
	if merged.Colors == older.Colors {
		t.Fatalf("Merge() shares the colors pointer with its receiver")
	}
	if merged.Layout.Spacing != SpacingRelaxed {
		t.Fatalf("merged spacing = %q, want relaxed", merged.Layout.Spacing)
	}
	newer.Layout.Spacing = SpacingNormal
	if merged.Layout.Spacing != SpacingRelaxed {
		t.Fatalf("Merge() aliases the newer partition")
	}

	clone := merged.Clone()
	clone.Colors.Primary = "#ffffff"
	if merged.Colors.Primary != "#000000" {
		t.Fatalf("Clone() aliases its receiver")
	}
}

func TestOverrideColumnsRoundTrip(t *testing.T) {
	theme := DefaultTheme()
	overrides := ThemeOverrides{Typography: &theme.Typography, InputFields: &theme.InputFields}

	colors, typography, layout, buttons, inputFields, err := EncodeOverrideColumns(overrides)
	if err != nil {
		t.Fatalf("EncodeOverrideColumns() error = %v", err)
	}
	if colors.Valid || layout.Valid || buttons.Valid {
		t.Fatalf("absent partitions must encode as NULL")
	}
	if !typography.Valid || !inputFields.Valid {
		t.Fatalf("present partitions must encode as JSON")
	}

	decoded, err := decodeOverrideColumns(colors, typography, layout, buttons, inputFields)
	if err != nil {
		t.Fatalf("decodeOverrideColumns() error = %v", err)
	}
	if diff := cmp.Diff(overrides, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExportImportTheme(t *testing.T) {
	source := DefaultTheme()
	source.Name = "Ocean Breeze"
	source.Colors.Primary = "#0ea5e9"

	data, err := json.Marshal(ExportTheme(source))
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}
	if strings.Contains(string(data), "scope") || strings.Contains(string(data), "createdAt") {
		t.Fatalf("export leaked catalog metadata: %s", data)
	}

	imported, err := DecodeExportedTheme(data)
	if err != nil {
		t.Fatalf("DecodeExportedTheme() error = %v", err)
	}
	if imported.Name != source.Name || !imported.SameTokens(source) {
		t.Fatalf("imported theme = %+v, want tokens and name of source", imported)
	}
}

func TestDecodeExportedThemeRejects(t *testing.T) {
	valid, err := json.Marshal(ExportTheme(DefaultTheme()))
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(valid, &doc); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(map[string]json.RawMessage)
		wantErr string
	}{
		{name: "missing partition", mutate: func(d map[string]json.RawMessage) { delete(d, "layout") }, wantErr: "layout is required"},
		{name: "null partition", mutate: func(d map[string]json.RawMessage) { d["buttons"] = json.RawMessage("null") }, wantErr: "buttons is required"},
		{name: "unknown key", mutate: func(d map[string]json.RawMessage) { d["scope"] = json.RawMessage(`"user"`) }, wantErr: `unknown field "scope"`},
		{name: "bad name", mutate: func(d map[string]json.RawMessage) { d["name"] = json.RawMessage(`""`) }, wantErr: "name is required"},
		{name: "name not string", mutate: func(d map[string]json.RawMessage) { d["name"] = json.RawMessage(`7`) }, wantErr: "name must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			copyDoc := make(map[string]json.RawMessage, len(doc))
			for k, v := range doc {
				copyDoc[k] = v
			}
			tt.mutate(copyDoc)
			data, err := json.Marshal(copyDoc)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			_, err = DecodeExportedTheme(data)
			if err == nil || !errors.Is(err, ErrInvalidTheme) || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("DecodeExportedTheme() error = %v, want ErrInvalidTheme containing %q", err, tt.wantErr)
			}
		})
	}
}
