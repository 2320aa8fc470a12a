package graph

import (
	"fmt"
	"strings"
)

// UnknownNodeError reports endpoint codes that have no links in the graph.
type UnknownNodeError struct {
	Codes []string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown station(s) in graph: %s", strings.Join(e.Codes, ", "))
}

// NoPathError reports that the two endpoints lie in different components.
type NoPathError struct {
	From string
	To   string
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("no path from %s to %s", e.From, e.To)
}
