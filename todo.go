package todoes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Todo describes a todo item. Only the id and the name are known to the client. Any other property found in a
// response is kept undecoded in Extra and sent back verbatim when the todo is marshalled, so that updating a todo
// does not lose properties the backend added.
type Todo struct {
	// Assigned by the server. Zero for a todo that has not been created yet, in which case it is not marshalled.
	ID int64

	Name string

	// Properties other than id and name, keyed by JSON property name.
	Extra map[string]json.RawMessage
}

// MarshalJSON implements json.Marshaler. Extra properties are written in key order after id and name; Extra
// entries named id or name are ignored.
func (todo Todo) MarshalJSON() ([]byte, error) {
	name, err := json.Marshal(todo.Name)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(nil)
	buf.WriteRune('{')
	if todo.ID != 0 {
		_, _ = fmt.Fprintf(buf, `"id":%d,`, todo.ID)
	}
	buf.WriteString(`"name":`)
	buf.Write(name)
	keys := make([]string, 0, len(todo.Extra))
	for k := range todo.Extra {
		if k != "id" && k != "name" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := todo.Extra[k]
		if !json.Valid(v) {
			return nil, fmt.Errorf("extra property %q: invalid JSON", k)
		}
		key, _ := json.Marshal(k)
		buf.WriteRune(',')
		buf.Write(key)
		buf.WriteRune(':')
		buf.Write(v)
	}
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (todo *Todo) UnmarshalJSON(b []byte) error {
	var props map[string]json.RawMessage
	if err := json.Unmarshal(b, &props); err != nil {
		return err
	}
	var decoded Todo
	if v, ok := props["id"]; ok {
		if err := json.Unmarshal(v, &decoded.ID); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		delete(props, "id")
	}
	if v, ok := props["name"]; ok {
		if err := json.Unmarshal(v, &decoded.Name); err != nil {
			return fmt.Errorf("name: %w", err)
		}
		delete(props, "name")
	}
	if len(props) != 0 {
		decoded.Extra = props
	}
	*todo = decoded
	return nil
}

func (todo *Todo) String() string {
	if todo == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%d %q", todo.ID, todo.Name)
}
