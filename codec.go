package expect

import (
	"bytes"
	"errors"

	"github.com/goccy/go-json"
)

var errNoAlternative = errors.New(`expect: JSON object has neither "value" nor "error"`)

// MarshalJSON encodes an empty VoidError as null and a failure as its message.
func (e VoidError) MarshalJSON() ([]byte, error) {
	if e.message == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*e.message)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (e *VoidError) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*e = VoidError{}
		return nil
	}
	var message string
	if err := json.Unmarshal(data, &message); err != nil {
		return err
	}
	*e = NewVoidError(message)
	return nil
}

// MarshalJSON encodes e as {"value": ...} or {"error": ...}.
func (e Expect[T]) MarshalJSON() ([]byte, error) {
	if e.HoldsError() {
		return json.Marshal(struct {
			Error VoidError `json:"error"`
		}{e.Fail()})
	}
	return json.Marshal(struct {
		Value T `json:"value"`
	}{e.Success()})
}

// UnmarshalJSON is the inverse of MarshalJSON. When both keys are present the
// error wins.
func (e *Expect[T]) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["error"]; ok {
		var f VoidError
		if err := json.Unmarshal(raw, &f); err != nil {
			return err
		}
		*e = Err[T](f)
		return nil
	}
	raw, ok := fields["value"]
	if !ok {
		return errNoAlternative
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*e = Ok(v)
	return nil
}
