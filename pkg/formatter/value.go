package formatter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/thomasrohde/calc/pkg/ast"
	"github.com/thomasrohde/calc/pkg/evaluator"
)

var (
	valueColor = color.New(color.FgGreen)
	errorColor = color.New(color.FgRed)
	hintColor  = color.New(color.FgYellow)
)

// ValueString renders an evaluation result for the terminal: integers in
// green, errors in red with their hint on a second line.
func ValueString(v ast.Node, colorize bool) string {
	paint := func(c *color.Color, s string) string {
		if !colorize {
			return s
		}
		return c.Sprint(s)
	}
	switch n := v.(type) {
	case *ast.IntValue:
		return paint(valueColor, strconv.FormatInt(int64(n.Value), 10))
	case *ast.ErrorValue:
		out := paint(errorColor, "error: "+n.Message)
		if n.Hint != "" {
			out += "\n" + paint(hintColor, "  hint: "+n.Hint)
		}
		return out
	case nil:
		return ""
	default:
		return paint(errorColor, fmt.Sprintf("error: unevaluated %s", v.Kind()))
	}
}

// WriteBindings renders an environment snapshot as a two-column table.
func WriteBindings(w io.Writer, bindings []evaluator.NamedValue) {
	if len(bindings) == 0 {
		fmt.Fprintln(w, "(no bindings)")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Value"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, b := range bindings {
		table.Append([]string{b.Name, strconv.FormatInt(int64(b.Value), 10)})
	}
	table.Render()
}
