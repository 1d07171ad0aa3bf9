package schema

import "encoding/json"

// prettyJSON indents m the way the teacher's generated clients render
// entities for debugging — plain encoding/json.MarshalIndent, no
// third-party JSON library (spec.md §4.9: "pretty JSON representation is
// a side capability of the codec").
func prettyJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
