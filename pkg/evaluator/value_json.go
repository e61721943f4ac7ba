package evaluator

import (
	"encoding/json"

	"github.com/thomasrohde/calc/pkg/ast"
	"github.com/thomasrohde/calc/pkg/diagnostics"
)

// jsonValue is the wire shape of an evaluation result.
type jsonValue struct {
	Kind    string `json:"kind"`
	Value   *int32 `json:"value,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// ValueToJSON marshals an evaluation result to JSON bytes:
// {"kind":"int","value":N} or {"kind":"error","code":...,"message":...}.
func ValueToJSON(v ast.Node) ([]byte, error) {
	return json.Marshal(valueToRaw(v))
}

func valueToRaw(v ast.Node) jsonValue {
	switch val := v.(type) {
	case *ast.IntValue:
		n := val.Value
		return jsonValue{Kind: "int", Value: &n}
	case *ast.ErrorValue:
		return jsonValue{Kind: "error", Code: val.Code, Message: val.Message, Hint: val.Hint}
	case nil:
		return jsonValue{Kind: "none"}
	default:
		return jsonValue{Kind: "error", Code: diagnostics.EType, Message: "unevaluated " + v.Kind()}
	}
}
