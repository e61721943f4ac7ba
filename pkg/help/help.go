// Package help holds the calc quick reference and help topics.
package help

import (
	"fmt"
	"sort"
	"strings"
)

// Version is reported in the quick reference.
const Version = "v0.1"

// QUICKREF is printed by `calc help` with no topic.
const QUICKREF = `calc ` + Version + ` - interactive integer calculator

  calc                 start the REPL (same as: calc repl)
  calc eval <line>...  evaluate lines in one session
  calc run <file|->    evaluate a script line by line
  calc check <file>    lex, parse, and validate without evaluating
  calc fmt <file>      print a script in canonical form
  calc trace <file>    summarize a trace written by run --trace
  calc config          show the effective configuration
  calc help <topic>    show a topic

Language:
  42   x   -x   a + b * c   (a + b) * c   a > b   a < b
  if cond then a else b      let name = expr

Topics: syntax, operators, errors, repl, config, examples
`

// Topics maps topic names to their text.
var Topics = map[string]string{
	"syntax": `SYNTAX

One statement per line.

  statement  := "let" NAME "=" expr | expr
  expr       := sum ( (">" | "<") sum )*
  sum        := term ( ("+" | "-") term )*
  term       := factor ( ("*" | "/") factor )*
  factor     := "(" expr ")" | "if" expr "then" expr "else" expr
              | "-" factor | INTEGER | NAME

INTEGER is a run of digits within the signed 32-bit range.
NAME is a run of ASCII letters and digits that is not all digits and is not
one of the keywords let, if, then, else.
Whitespace between tokens is optional.
`,

	"operators": `OPERATORS

Tightest first; all binary operators are left-associative.

  -x          negation
  * /         multiplication, division (truncates toward zero)
  + -         addition, subtraction
  > <         comparison, yields 1 or 0

Arithmetic is 32-bit and wraps on overflow.
"if c then a else b" picks a when c is nonzero and b when c is 0; only the
chosen branch is evaluated.
`,

	"errors": `ERRORS

Static errors stop the line before evaluation and never change bindings:
  E_LEX       unexpected character or out-of-range integer literal
  E_PARSE     syntax error, including input left over after a statement

Runtime errors are values; they flow through the rest of the expression:
  E_UNBOUND   Variable 'x' does not exist
  E_DIV_ZERO  cannot divide by zero
  E_TYPE      cannot <op> a non-integer value
  E_COND      case value cannot be tested in an if statement

A binding whose value is an error leaves the old binding in place.

Exit codes: 0 ok, 1 usage or I/O, 2 static errors, 4 runtime errors.
`,

	"repl": `REPL

Each line is evaluated in the same session; bindings persist until exit.

  :env            list bindings
  :ast <line>     show the parsed form of a line without evaluating it
  :help [topic]   show help
  :quit           exit

Ctrl-C discards the current line. Ctrl-D exits.
History is kept in the file named by history_file.
`,

	"config": `CONFIG

calc reads the first of ./.calc.yaml and ~/.calc/config.yaml, or uses
defaults. --config <path> names a file explicitly.

  prompt: "calc> "
  history_file: ~/.calc/history
  color: auto          # auto, always, never
  pretty: true         # false prints diagnostics as JSON
  max_depth: 256       # nesting limit, 0 for none
  debug: false
  prelude:             # evaluated before the first line
    - let answer = 42
`,

	"examples": `EXAMPLES

  calc> 2 + 3 * 4
  14
  calc> let x = 10
  10
  calc> if x > 5 then x * 2 else 0
  20
  calc> x / 0
  error: cannot divide by zero
  calc> let x = x - 1
  9
`,
}

// TopicList is the ordered list of topic names.
var TopicList = []string{"syntax", "operators", "errors", "repl", "config", "examples"}

// MatchTopic finds a topic by exact name or unique prefix.
func MatchTopic(query string) (string, string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	if query == "" {
		return "", "", fmt.Errorf("unknown help topic %q", query)
	}
	var matches []string
	for _, name := range TopicList {
		if strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q", query)
	default:
		sort.Strings(matches)
		return "", "", fmt.Errorf("ambiguous help topic %q: %s", query, strings.Join(matches, ", "))
	}
}
