package main

import (
	"fmt"
	"strconv"
	"strings"

	"stlshade/vmath/vec3"
)

// vec3Value is a flag.Value holding a comma-separated triple such as
// "0,-2.5,-10".
type vec3Value struct {
	v *vec3.T
}

func (f vec3Value) String() string {
	if f.v == nil {
		return ""
	}
	return fmt.Sprintf("%v,%v,%v", f.v[0], f.v[1], f.v[2])
}

func (f vec3Value) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want three comma-separated numbers, got %q", s)
	}
	var v vec3.T
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("while parsing component %d of %q: %w", i, s, err)
		}
		v[i] = x
	}
	*f.v = v
	return nil
}
