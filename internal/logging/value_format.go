package logging

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(consoleTimeLayout)
}

// formatFloat keeps eight significant digits, enough to tell abundances and
// RMS values apart without printing float noise.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'g', 8, 64)
}

// formatFloats summarizes a series as its length and range instead of
// dumping every channel.
func formatFloats(values []float64) string {
	if len(values) == 0 {
		return "[]"
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	nan := 0
	for _, v := range values {
		if math.IsNaN(v) {
			nan++
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if nan == len(values) {
		return fmt.Sprintf("[%d values, all NaN]", len(values))
	}
	summary := fmt.Sprintf("[%d values, %s..%s", len(values), formatFloat(lo), formatFloat(hi))
	if nan > 0 {
		summary += fmt.Sprintf(", %d NaN", nan)
	}
	return summary + "]"
}

// plainValue renders v without quoting, for header fields.
func plainValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return formatValue(v)
}

// formatValue renders v for a key=value pair, quoting strings that would
// otherwise be ambiguous.
func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return formatFloat(v.Float64())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindString:
		return quoteIfNeeded(v.String())
	}
	switch x := v.Any().(type) {
	case error:
		return quoteIfNeeded(x.Error())
	case []float64:
		return formatFloats(x)
	case []string:
		return quoteIfNeeded(strings.Join(x, ", "))
	default:
		return quoteIfNeeded(fmt.Sprint(x))
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " =\"") || strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return strconv.Quote(s)
	}
	return s
}
