package service

import (
	"fmt"
	"strings"

	"github.com/nvandessel/procsim/internal/namespace"
)

// Describe returns the metadata of n.
func (s *Service) Describe(n *namespace.Node) NodeInfo {
	info := NodeInfo{
		ID:          n.ID(),
		BrowseName:  n.BrowseName(),
		DisplayName: n.DisplayName(),
		Path:        n.Path(),
		Class:       n.Class().String(),
		Children:    len(n.Children()),
	}
	if n.IsVariable() {
		info.DataType = n.ValueType().String()
		info.URI = s.URI(n)
	}
	return info
}

// Browse returns the node at path and its direct children. An empty path
// browses the root.
func (s *Service) Browse(path string) (BrowseResult, error) {
	n, err := s.space.Lookup(path)
	if err != nil {
		return BrowseResult{}, err
	}

	children := n.Children()
	res := BrowseResult{
		Node:     s.Describe(n),
		Children: make([]NodeInfo, 0, len(children)),
	}
	for _, c := range children {
		res.Children = append(res.Children, s.Describe(c))
	}

	return res, nil
}

// ReadOne evaluates the variable at path.
func (s *Service) ReadOne(path string) (ReadResult, error) {
	n, err := s.space.Lookup(path)
	if err != nil {
		s.onReadError(path, err)
		return ReadResult{Path: path, Error: err.Error()}, err
	}

	v, err := n.Read()
	if err != nil {
		s.onReadError(path, err)
		return ReadResult{Path: path, Error: err.Error()}, err
	}

	return ReadResult{
		Path:            n.Path(),
		DisplayName:     n.DisplayName(),
		DataType:        v.Type().String(),
		Value:           v.Any(),
		SourceTimestamp: formatTime(s.now()),
	}, nil
}

// Read evaluates each path independently. Failures are reported per path.
// No snapshot consistency across paths is implied.
func (s *Service) Read(paths []string) []ReadResult {
	results := make([]ReadResult, 0, len(paths))
	for _, p := range paths {
		res, _ := s.ReadOne(p)
		results = append(results, res)
	}
	return results
}

// ReadAll evaluates every variable in walk order.
func (s *Service) ReadAll() []ReadResult {
	vars := s.space.Variables()
	paths := make([]string, 0, len(vars))
	for _, v := range vars {
		paths = append(paths, v.Path())
	}
	return s.Read(paths)
}

// Tree renders the namespace as a markdown outline.
func (s *Service) Tree() string {
	var sb strings.Builder
	sb.WriteString("# Namespace\n\n")

	s.space.Walk(func(n *namespace.Node, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		if n.IsVariable() {
			sb.WriteString(fmt.Sprintf("- **%s** (%s, %s) `%s`\n",
				n.BrowseName(), n.DisplayName(), n.ValueType(), s.URI(n)))
		} else {
			sb.WriteString(fmt.Sprintf("- %s/\n", n.BrowseName()))
		}
		return true
	})

	return sb.String()
}
