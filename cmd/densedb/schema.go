// schema.go -- "name:bits,name:bits,..." schema mini-grammar for the CLI
//
// Grounded in pranavdb's parseSchemaString/SchemaStringFromCodes
// comma-separated mini-grammar, adapted from "name:type" pairs to
// "name:bits" pairs since densedb fields carry a bit width rather
// than a value type.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opencoff/go-densedb"
)

func parseSchemaString(s string) ([]densedb.Field, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty schema")
	}

	parts := strings.Split(s, ",")
	fields := make([]densedb.Field, 0, len(parts))
	for i, p := range parts {
		nv := strings.SplitN(strings.TrimSpace(p), ":", 2)
		if len(nv) != 2 {
			return nil, fmt.Errorf("field %d: expected name:bits, got %q", i, p)
		}
		name := strings.TrimSpace(nv[0])
		if name == "" {
			return nil, fmt.Errorf("field %d: empty name", i)
		}
		bits, err := strconv.ParseUint(strings.TrimSpace(nv[1]), 10, 32)
		if err != nil || bits == 0 {
			return nil, fmt.Errorf("field %d (%s): bad bit width %q", i, name, nv[1])
		}
		fields = append(fields, densedb.Field{Name: name, Size: uint32(bits)})
	}
	return fields, nil
}

func schemaString(fields []densedb.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s:%d", f.Name, f.Size)
	}
	return strings.Join(parts, ",")
}
