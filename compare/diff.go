package compare

import (
	"encoding/json"
	"fmt"

	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

func stateJSON(s *types.RegisterState) ([]byte, error) {
	m := make(map[string]string)
	for _, f := range fields(s) {
		m[f.name] = fmt.Sprintf("0x%x", f.value)
	}
	return json.Marshal(m)
}

// Diff renders an ASCII diff of expected against actual. It returns an empty
// string when the states are identical.
func Diff(expected, actual types.RegisterState, coloring bool) (string, error) {
	expJSON, err := stateJSON(&expected)
	if err != nil {
		return "", err
	}
	actJSON, err := stateJSON(&actual)
	if err != nil {
		return "", err
	}

	delta, err := gojsondiff.New().Compare(expJSON, actJSON)
	if err != nil {
		return "", err
	}
	if !delta.Modified() {
		return "", nil
	}

	var left interface{}
	if err := json.Unmarshal(expJSON, &left); err != nil {
		return "", err
	}
	cfg := formatter.AsciiFormatterConfig{ShowArrayIndex: true, Coloring: coloring}
	return formatter.NewAsciiFormatter(left, cfg).Format(delta)
}
