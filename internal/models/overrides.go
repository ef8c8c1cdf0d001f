package models

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Partition names one of the five fixed groups of theme tokens. It is the unit of override granularity.
type Partition string

const (
	PartitionColors      Partition = "colors"
	PartitionTypography  Partition = "typography"
	PartitionLayout      Partition = "layout"
	PartitionButtons     Partition = "buttons"
	PartitionInputFields Partition = "inputFields"
)

var AllPartitions = []Partition{
	PartitionColors,
	PartitionTypography,
	PartitionLayout,
	PartitionButtons,
	PartitionInputFields,
}

var partitionFields = map[Partition][]string{
	PartitionColors:      jsonFieldNames(Colors{}),
	PartitionTypography:  jsonFieldNames(Typography{}),
	PartitionLayout:      jsonFieldNames(Layout{}),
	PartitionButtons:     jsonFieldNames(Buttons{}),
	PartitionInputFields: jsonFieldNames(InputFields{}),
}

// ThemeOverrides is a sparse set of whole-partition replacements. A nil partition is absent.
// The same shape doubles as a partial update to an in-memory theme.
type ThemeOverrides struct {
	Colors      *Colors      `json:"colors,omitempty"`
	Typography  *Typography  `json:"typography,omitempty"`
	Layout      *Layout      `json:"layout,omitempty"`
	Buttons     *Buttons     `json:"buttons,omitempty"`
	InputFields *InputFields `json:"inputFields,omitempty"`
}

func (o ThemeOverrides) IsEmpty() bool {
	return o.Colors == nil && o.Typography == nil && o.Layout == nil && o.Buttons == nil && o.InputFields == nil
}

// Partitions lists the present partitions in canonical order.
func (o ThemeOverrides) Partitions() []Partition {
	present := make([]Partition, 0, len(AllPartitions))
	if o.Colors != nil {
		present = append(present, PartitionColors)
	}
	if o.Typography != nil {
		present = append(present, PartitionTypography)
	}
	if o.Layout != nil {
		present = append(present, PartitionLayout)
	}
	if o.Buttons != nil {
		present = append(present, PartitionButtons)
	}
	if o.InputFields != nil {
		present = append(present, PartitionInputFields)
	}
	return present
}

// ApplyTo returns theme with every present partition replaced wholesale.
func (o ThemeOverrides) ApplyTo(theme Theme) Theme {
	if o.Colors != nil {
		theme.Colors = *o.Colors
	}
	if o.Typography != nil {
		theme.Typography = *o.Typography
	}
	if o.Layout != nil {
		theme.Layout = *o.Layout
	}
	if o.Buttons != nil {
		theme.Buttons = *o.Buttons
	}
	if o.InputFields != nil {
		theme.InputFields = *o.InputFields
	}
	return theme
}

// Merge layers newer over o partition by partition, the way the store upserts an override record.
func (o ThemeOverrides) Merge(newer ThemeOverrides) ThemeOverrides {
	merged := o.Clone()
	if newer.Colors != nil {
		c := *newer.Colors
		merged.Colors = &c
	}
	if newer.Typography != nil {
		t := *newer.Typography
		merged.Typography = &t
	}
	if newer.Layout != nil {
		l := *newer.Layout
		merged.Layout = &l
	}
	if newer.Buttons != nil {
		b := *newer.Buttons
		merged.Buttons = &b
	}
	if newer.InputFields != nil {
		i := *newer.InputFields
		merged.InputFields = &i
	}
	return merged
}

// Clone copies every present partition so the result shares no memory with o.
func (o ThemeOverrides) Clone() ThemeOverrides {
	var c ThemeOverrides
	if o.Colors != nil {
		v := *o.Colors
		c.Colors = &v
	}
	if o.Typography != nil {
		v := *o.Typography
		c.Typography = &v
	}
	if o.Layout != nil {
		v := *o.Layout
		c.Layout = &v
	}
	if o.Buttons != nil {
		v := *o.Buttons
		c.Buttons = &v
	}
	if o.InputFields != nil {
		v := *o.InputFields
		c.InputFields = &v
	}
	return c
}

func (o ThemeOverrides) Validate() error {
	if o.Colors != nil {
		if err := o.Colors.Validate(); err != nil {
			return err
		}
	}
	if o.Typography != nil {
		if err := o.Typography.Validate(); err != nil {
			return err
		}
	}
	if o.Layout != nil {
		if err := o.Layout.Validate(); err != nil {
			return err
		}
	}
	if o.Buttons != nil {
		if err := o.Buttons.Validate(); err != nil {
			return err
		}
	}
	if o.InputFields != nil {
		if err := o.InputFields.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (o *ThemeOverrides) UnmarshalJSON(data []byte) error {
	decoded, err := decodeOverrideShape(data)
	if err != nil {
		return err
	}
	*o = decoded
	return nil
}

// DecodeOverrides parses an override record. Unknown partitions, unknown fields, partitions
// missing any field, and invalid token values are all rejected; a null partition is absent.
func DecodeOverrides(data []byte) (ThemeOverrides, error) {
	overrides, err := decodeOverrideShape(data)
	if err != nil {
		return ThemeOverrides{}, err
	}
	if err := overrides.Validate(); err != nil {
		return ThemeOverrides{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	return overrides, nil
}

func decodeOverrideShape(data []byte) (ThemeOverrides, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return ThemeOverrides{}, fmt.Errorf("%w: overrides must be a JSON object", ErrInvalidTheme)
	}
	if raw == nil {
		return ThemeOverrides{}, fmt.Errorf("%w: overrides must be a JSON object", ErrInvalidTheme)
	}

	var overrides ThemeOverrides
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		if isJSONNull(value) {
			if _, known := partitionFields[Partition(key)]; !known {
				return ThemeOverrides{}, fmt.Errorf("%w: unknown partition %q", ErrInvalidTheme, key)
			}
			continue
		}
		var err error
		switch Partition(key) {
		case PartitionColors:
			overrides.Colors = new(Colors)
			err = decodePartition(PartitionColors, value, overrides.Colors)
		case PartitionTypography:
			overrides.Typography = new(Typography)
			err = decodePartition(PartitionTypography, value, overrides.Typography)
		case PartitionLayout:
			overrides.Layout = new(Layout)
			err = decodePartition(PartitionLayout, value, overrides.Layout)
		case PartitionButtons:
			overrides.Buttons = new(Buttons)
			err = decodePartition(PartitionButtons, value, overrides.Buttons)
		case PartitionInputFields:
			overrides.InputFields = new(InputFields)
			err = decodePartition(PartitionInputFields, value, overrides.InputFields)
		default:
			return ThemeOverrides{}, fmt.Errorf("%w: unknown partition %q", ErrInvalidTheme, key)
		}
		if err != nil {
			return ThemeOverrides{}, err
		}
	}
	return overrides, nil
}

// decodePartition requires every field of the partition and rejects extras.
func decodePartition(partition Partition, raw json.RawMessage, dst any) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil || keys == nil {
		return fmt.Errorf("%w: %s must be an object", ErrInvalidTheme, partition)
	}
	for _, field := range partitionFields[partition] {
		if _, ok := keys[field]; !ok {
			return fmt.Errorf("%w: %s.%s is required", ErrInvalidTheme, partition, field)
		}
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTheme, partition, err)
	}
	return nil
}

// ExportedTheme is the portable import/export document.
type ExportedTheme struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Colors      Colors      `json:"colors"`
	Typography  Typography  `json:"typography"`
	Layout      Layout      `json:"layout"`
	Buttons     Buttons     `json:"buttons"`
	InputFields InputFields `json:"inputFields"`
}

func ExportTheme(theme Theme) ExportedTheme {
	return ExportedTheme{
		Name:        theme.Name,
		Description: theme.Description,
		Category:    theme.Category,
		Colors:      theme.Colors,
		Typography:  theme.Typography,
		Layout:      theme.Layout,
		Buttons:     theme.Buttons,
		InputFields: theme.InputFields,
	}
}

// DecodeExportedTheme parses an exported theme document with the same strictness as DecodeOverrides,
// except that all five partitions are required.
func DecodeExportedTheme(data []byte) (Theme, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return Theme{}, fmt.Errorf("%w: theme must be a JSON object", ErrInvalidTheme)
	}

	partitionsRaw := make(map[string]json.RawMessage, len(AllPartitions))
	var theme Theme
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		switch key {
		case "name":
			if err := json.Unmarshal(value, &theme.Name); err != nil {
				return Theme{}, fmt.Errorf("%w: name must be a string", ErrInvalidTheme)
			}
		case "description":
			if err := json.Unmarshal(value, &theme.Description); err != nil {
				return Theme{}, fmt.Errorf("%w: description must be a string", ErrInvalidTheme)
			}
		case "category":
			if err := json.Unmarshal(value, &theme.Category); err != nil {
				return Theme{}, fmt.Errorf("%w: category must be a string", ErrInvalidTheme)
			}
		default:
			if _, ok := partitionFields[Partition(key)]; !ok {
				return Theme{}, fmt.Errorf("%w: unknown field %q", ErrInvalidTheme, key)
			}
			partitionsRaw[key] = value
		}
	}

	for _, partition := range AllPartitions {
		if value, ok := partitionsRaw[string(partition)]; !ok || isJSONNull(value) {
			return Theme{}, fmt.Errorf("%w: %s is required", ErrInvalidTheme, partition)
		}
	}

	overrides, err := decodeOverrideShape(mustMarshal(partitionsRaw))
	if err != nil {
		return Theme{}, err
	}
	theme = overrides.ApplyTo(theme)
	if err := ValidateThemeName(theme.Name); err != nil {
		return Theme{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	if err := theme.ValidateTokens(); err != nil {
		return Theme{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	return theme, nil
}

// EncodePartitions renders the five partitions as JSON column values.
func EncodePartitions(theme Theme) (colors, typography, layout, buttons, inputFields string, err error) {
	values := []any{theme.Colors, theme.Typography, theme.Layout, theme.Buttons, theme.InputFields}
	encoded := make([]string, len(values))
	for i, value := range values {
		data, marshalErr := json.Marshal(value)
		if marshalErr != nil {
			return "", "", "", "", "", fmt.Errorf("encode %s: %w", AllPartitions[i], marshalErr)
		}
		encoded[i] = string(data)
	}
	return encoded[0], encoded[1], encoded[2], encoded[3], encoded[4], nil
}

// EncodeOverrideColumns renders present partitions as JSON and absent ones as NULL.
func EncodeOverrideColumns(o ThemeOverrides) (colors, typography, layout, buttons, inputFields sql.NullString, err error) {
	encode := func(present bool, value any) (sql.NullString, error) {
		if !present {
			return sql.NullString{}, nil
		}
		data, err := json.Marshal(value)
		if err != nil {
			return sql.NullString{}, err
		}
		return sql.NullString{String: string(data), Valid: true}, nil
	}
	if colors, err = encode(o.Colors != nil, o.Colors); err != nil {
		return
	}
	if typography, err = encode(o.Typography != nil, o.Typography); err != nil {
		return
	}
	if layout, err = encode(o.Layout != nil, o.Layout); err != nil {
		return
	}
	if buttons, err = encode(o.Buttons != nil, o.Buttons); err != nil {
		return
	}
	inputFields, err = encode(o.InputFields != nil, o.InputFields)
	return
}

func decodePartitionColumns(theme *Theme, colors, typography, layout, buttons, inputFields string) error {
	columns := []struct {
		partition Partition
		value     string
		dst       any
	}{
		{PartitionColors, colors, &theme.Colors},
		{PartitionTypography, typography, &theme.Typography},
		{PartitionLayout, layout, &theme.Layout},
		{PartitionButtons, buttons, &theme.Buttons},
		{PartitionInputFields, inputFields, &theme.InputFields},
	}
	for _, column := range columns {
		if err := decodePartition(column.partition, json.RawMessage(column.value), column.dst); err != nil {
			return err
		}
	}
	return nil
}

func decodeOverrideColumns(colors, typography, layout, buttons, inputFields sql.NullString) (ThemeOverrides, error) {
	var o ThemeOverrides
	if colors.Valid {
		o.Colors = new(Colors)
		if err := decodePartition(PartitionColors, json.RawMessage(colors.String), o.Colors); err != nil {
			return ThemeOverrides{}, err
		}
	}
	if typography.Valid {
		o.Typography = new(Typography)
		if err := decodePartition(PartitionTypography, json.RawMessage(typography.String), o.Typography); err != nil {
			return ThemeOverrides{}, err
		}
	}
	if layout.Valid {
		o.Layout = new(Layout)
		if err := decodePartition(PartitionLayout, json.RawMessage(layout.String), o.Layout); err != nil {
			return ThemeOverrides{}, err
		}
	}
	if buttons.Valid {
		o.Buttons = new(Buttons)
		if err := decodePartition(PartitionButtons, json.RawMessage(buttons.String), o.Buttons); err != nil {
			return ThemeOverrides{}, err
		}
	}
	if inputFields.Valid {
		o.InputFields = new(InputFields)
		if err := decodePartition(PartitionInputFields, json.RawMessage(inputFields.String), o.InputFields); err != nil {
			return ThemeOverrides{}, err
		}
	}
	return o, nil
}

func jsonFieldNames(v any) []string {
	t := reflect.TypeOf(v)
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
