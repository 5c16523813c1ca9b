package output

import (
	"encoding/json"
	"io"
	"reflect"
)

// JSONFormatter formats data as JSON. Dumped keys and values are written
// as-is, so HTML escaping is off.
type JSONFormatter struct{}

// Format writes data followed by a newline. A nil slice is written as []
// so an empty table lists as an empty array.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice && v.IsNil() {
		data = []any{}
	}
	return enc.Encode(data)
}
