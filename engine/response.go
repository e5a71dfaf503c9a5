package engine

import (
	"bytes"
	"context"
	"encoding/json"
)

// problemJSON mirrors Problem in the field order required by §6: message
// first, then locations, then path, both optional.
type problemJSON struct {
	Message   string     `json:"message"`
	Locations []Location `json:"locations,omitempty"`
	Path      []string   `json:"path,omitempty"`
}

// MarshalJSON renders a Problem in the §6 wire shape.
func (p *Problem) MarshalJSON() ([]byte, error) {
	return json.Marshal(problemJSON{Message: p.Message, Locations: p.Locations, Path: p.Path})
}

// Response is the GraphQL response envelope of §6: data appears iff a
// proto completed to a usable value, errors appears iff any Problem was
// collected; both may be present (partial success).
type Response struct {
	Data   Json
	HasData bool
	Errors []*Problem
}

// MarshalJSON renders the envelope. "data" is written (even as JSON
// null) only when HasData is true; encoding/json's omitempty can't tell
// "absent" from "present but nil" on an interface{} field, so the
// envelope is assembled by hand instead.
func (r *Response) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	wroteField := false
	if r.HasData {
		dataJSON, err := json.Marshal(r.Data)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"data":`)
		buf.Write(dataJSON)
		wroteField = true
	}
	if len(r.Errors) > 0 {
		if wroteField {
			buf.WriteByte(',')
		}
		errorsJSON, err := json.Marshal(r.Errors)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"errors":`)
		buf.Write(errorsJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Assemble runs the two-phase pipeline end to end (§2 data flow): it
// runs root, completes deferrals against mapping, and assembles the
// final Response envelope.
func Assemble(ctx context.Context, ip *Interpreter, query Query) *Response {
	protoResult := ip.RunRoot(ctx, query)
	proto, hasProto := protoResult.Value()
	if !hasProto {
		return &Response{Errors: protoResult.Problems()}
	}

	completed := Complete(ctx, proto, ip.Mapping)
	value, hasValue := completed.Value()
	problems := append(append([]*Problem{}, protoResult.Problems()...), completed.Problems()...)

	if !hasValue {
		return &Response{Errors: problems}
	}
	return &Response{Data: value, HasData: true, Errors: problems}
}
