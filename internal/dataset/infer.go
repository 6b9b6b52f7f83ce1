package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Options controls how raw cells are turned into typed columns.
type Options struct {
	// Delimiter for CSV. If 0, chosen by extension (.tsv is tab, anything else comma).
	Delimiter rune
	// DecimalSeparator for numbers; 0 means '.'.
	DecimalSeparator rune
	// ThousandsSeparator is stripped from numbers when set.
	ThousandsSeparator rune
	// MissingTokens are cell values treated as missing in addition to blanks.
	MissingTokens []string
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{
		MissingTokens: []string{"NA", "N/A", "NaN", "nan", "null", "NULL"},
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006 15:04:05.000",
	"02/01/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

func parseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (o Options) normalizeNumber(s string) string {
	raw := strings.ReplaceAll(s, " ", "")
	if o.ThousandsSeparator != 0 && o.ThousandsSeparator != o.decimal() {
		raw = strings.ReplaceAll(raw, string(o.ThousandsSeparator), "")
	}
	if d := o.decimal(); d != '.' {
		raw = strings.ReplaceAll(raw, string(d), ".")
	}
	return raw
}

func (o Options) decimal() rune {
	if o.DecimalSeparator == 0 {
		return '.'
	}
	return o.DecimalSeparator
}

func (o Options) parseInt(s string) (int64, bool) {
	i, err := strconv.ParseInt(o.normalizeNumber(s), 10, 64)
	return i, err == nil
}

func (o Options) parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(o.normalizeNumber(s), 64)
	return f, err == nil
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func (o Options) isMissing(s string) bool {
	if s == "" {
		return true
	}
	for _, tok := range o.MissingTokens {
		if s == tok {
			return true
		}
	}
	return false
}

// inferColumn decides the column type from its raw cells and converts them.
// Integer columns with missing cells become float, like pandas does.
func inferColumn(name string, raw []string, opt Options) *Column {
	intOK, floatOK, timeOK, boolOK := true, true, true, true
	present, missing := 0, 0
	for _, r := range raw {
		v := strings.TrimSpace(r)
		if opt.isMissing(v) {
			missing++
			continue
		}
		present++
		if intOK {
			_, intOK = opt.parseInt(v)
		}
		if floatOK {
			_, floatOK = opt.parseFloat(v)
		}
		if timeOK {
			_, timeOK = parseTime(v)
		}
		if boolOK {
			_, boolOK = parseBool(v)
		}
		if !intOK && !floatOK && !timeOK && !boolOK {
			break
		}
	}

	typ := TypeText
	switch {
	case present == 0:
		typ = TypeFloat
	case intOK && missing == 0:
		typ = TypeInteger
	case intOK || floatOK:
		typ = TypeFloat
	case timeOK:
		typ = TypeTimestamp
	case boolOK:
		typ = TypeBoolean
	}

	vals := make([]any, len(raw))
	for i, r := range raw {
		v := strings.TrimSpace(r)
		if opt.isMissing(v) {
			continue
		}
		switch typ {
		case TypeInteger:
			vals[i], _ = opt.parseInt(v)
		case TypeFloat:
			vals[i], _ = opt.parseFloat(v)
		case TypeTimestamp:
			vals[i], _ = parseTime(v)
		case TypeBoolean:
			vals[i], _ = parseBool(v)
		default:
			vals[i] = v
		}
	}
	return &Column{Name: name, Type: typ, Values: vals}
}

// fromRecords builds a table from a header and raw string rows. Short rows are
// padded with missing cells.
func fromRecords(header []string, rows [][]string, opt Options) (*Table, error) {
	cols := make([]*Column, len(header))
	raw := make([]string, len(rows))
	for j, h := range header {
		for i, rec := range rows {
			if j < len(rec) {
				raw[i] = rec[j]
			} else {
				raw[i] = ""
			}
		}
		cols[j] = inferColumn(strings.TrimSpace(h), raw, opt)
	}
	return New(cols...)
}
