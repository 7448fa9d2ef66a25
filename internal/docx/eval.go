package docx

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"

	"git.home.luguber.info/inful/doc-builder/internal/markdown"
)

// errUnresolved marks an expression that evaluated to nothing; the caller
// turns it into a RenderError naming the placeholder.
var errUnresolved = errors.New("expression resolved to no value")

// filterFunc is one step of a placeholder's filter pipeline.
type filterFunc func(v any, args []any) (any, error)

// filters is the full set of supported filters. Placeholder pipelines are
// restricted to exactly these; anything else fails the render.
var filters = map[string]filterFunc{
	"round":   filterRound,
	"format":  filterFormat,
	"percent": filterPercent,
	"abs":     filterAbs,
	"upper":   filterUpper,
	"lower":   filterLower,
}

// evaluate resolves one `{{ ... }}` expression against the context. The
// head of the pipeline is evaluated by expr (no side effects, no code
// execution paths); the remaining segments must be registered filters.
func evaluate(src string, ctx map[string]any) (any, error) {
	segments := splitPipeline(src)
	head := strings.TrimSpace(segments[0])
	if head == "" {
		return nil, errUnresolved
	}

	program, err := expr.Compile(head, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", head, err)
	}
	val, err := expr.Run(program, ctx)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", head, err)
	}

	for _, seg := range segments[1:] {
		name, args, err := parseFilter(seg)
		if err != nil {
			return nil, err
		}
		fn, ok := filters[name]
		if !ok {
			return nil, fmt.Errorf("unsupported filter %q", name)
		}
		val, err = fn(val, args)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", name, err)
		}
	}

	if val == nil {
		return nil, errUnresolved
	}
	return val, nil
}

// splitPipeline splits on '|' outside of string literals. A doubled pipe
// is expr's logical OR and stays inside its segment.
func splitPipeline(src string) []string {
	var segments []string
	var sb strings.Builder
	var quote rune
	runes := []rune(src)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			sb.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			sb.WriteRune(r)
		case r == '|':
			if i+1 < len(runes) && runes[i+1] == '|' {
				sb.WriteString("||")
				i++
				continue
			}
			segments = append(segments, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	segments = append(segments, sb.String())
	return segments
}

// parseFilter parses a pipeline segment of the form `name` or
// `name(arg, ...)` with number and quoted-string literals.
func parseFilter(seg string) (string, []any, error) {
	seg = strings.TrimSpace(seg)
	open := strings.IndexByte(seg, '(')
	if open < 0 {
		return seg, nil, nil
	}
	if !strings.HasSuffix(seg, ")") {
		return "", nil, fmt.Errorf("malformed filter %q", seg)
	}
	name := strings.TrimSpace(seg[:open])
	rawArgs := strings.TrimSpace(seg[open+1 : len(seg)-1])
	if rawArgs == "" {
		return name, nil, nil
	}
	var args []any
	for _, raw := range strings.Split(rawArgs, ",") {
		raw = strings.TrimSpace(raw)
		switch {
		case len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0]:
			args = append(args, raw[1:len(raw)-1])
		default:
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return "", nil, fmt.Errorf("malformed filter argument %q", raw)
			}
			args = append(args, f)
		}
	}
	return name, args, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}

// filterRound rounds to n decimal places, half away from zero.
func filterRound(v any, args []any) (any, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	digits := 0.0
	if len(args) > 0 {
		if digits, err = toFloat(args[0]); err != nil {
			return nil, err
		}
	}
	scale := math.Pow(10, digits)
	return math.Round(f*scale) / scale, nil
}

// filterFormat applies an fmt verb, e.g. format("%.2f").
func filterFormat(v any, args []any) (any, error) {
	if len(args) != 1 {
		return nil, errors.New("format requires a verb argument")
	}
	verb, ok := args[0].(string)
	if !ok {
		return nil, errors.New("format verb must be a string")
	}
	return fmt.Sprintf(verb, v), nil
}

func filterPercent(v any, _ []any) (any, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return f * 100, nil
}

func filterAbs(v any, _ []any) (any, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return math.Abs(f), nil
}

func filterUpper(v any, _ []any) (any, error) {
	return strings.ToUpper(formatValue(v)), nil
}

func filterLower(v any, _ []any) (any, error) {
	return strings.ToLower(formatValue(v)), nil
}

// formatValue renders a resolved value as document text. Floats drop
// trailing zeros so `round(2)` of a whole number stays compact.
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case *markdown.Block:
		return val.PlainText()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
