package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-cubeaccess/cubeaccess"
)

// parseSlices parses a selection like "1:3,:,0:10:2". A single number
// selects one position, an omitted bound is the start or end of the axis,
// and missing trailing dimensions select everything.
func parseSlices(expr string, extents []int) ([]cubeaccess.Slice, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	parts := strings.Split(expr, ",")
	if len(parts) > len(extents) {
		return nil, fmt.Errorf("%d slices for %d dimensions", len(parts), len(extents))
	}

	sel := make([]cubeaccess.Slice, len(parts))
	for i, part := range parts {
		s, err := parseSlice(strings.TrimSpace(part), extents[i])
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i, err)
		}
		sel[i] = s
	}
	return sel, nil
}

func parseSlice(part string, extent int) (cubeaccess.Slice, error) {
	fields := strings.Split(part, ":")
	if len(fields) > 3 {
		return cubeaccess.Slice{}, fmt.Errorf("bad slice %q", part)
	}
	if len(fields) == 1 {
		i, err := strconv.Atoi(fields[0])
		if err != nil {
			return cubeaccess.Slice{}, fmt.Errorf("bad index %q", part)
		}
		return cubeaccess.Slice{Start: i, Stop: i + 1, Step: 1}, nil
	}

	s := cubeaccess.Slice{Start: 0, Stop: extent, Step: 1}
	bounds := []*int{&s.Start, &s.Stop, &s.Step}
	for j, field := range fields {
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return cubeaccess.Slice{}, fmt.Errorf("bad slice %q", part)
		}
		*bounds[j] = n
	}
	if s.Step < 1 {
		return cubeaccess.Slice{}, fmt.Errorf("step must be positive in %q", part)
	}
	return s, nil
}
