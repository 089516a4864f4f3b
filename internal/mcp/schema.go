package mcp

import "github.com/nvandessel/procsim/internal/service"

// SimBrowseInput defines the input for sim_browse tool.
type SimBrowseInput struct {
	Path string `json:"path,omitempty" jsonschema:"browse path such as Simulation or Objects/Simulation; empty browses the root"`
}

// SimBrowseOutput defines the output for sim_browse tool.
type SimBrowseOutput struct {
	Node     service.NodeInfo   `json:"node" jsonschema:"the browsed node"`
	Children []service.NodeInfo `json:"children" jsonschema:"direct children in creation order"`
}

// SimReadInput defines the input for sim_read tool.
type SimReadInput struct {
	Paths []string `json:"paths,omitempty" jsonschema:"variable paths such as Simulation/Temperature; empty reads every variable"`
}

// SimReadOutput defines the output for sim_read tool.
type SimReadOutput struct {
	Results []service.ReadResult `json:"results" jsonschema:"one result per requested path, in request order"`
	Count   int                  `json:"count" jsonschema:"number of results"`
	Errors  int                  `json:"errors" jsonschema:"number of failed reads"`
}

// SimStatusInput defines the input for sim_status tool.
type SimStatusInput struct{}

// SimStatusOutput defines the output for sim_status tool.
type SimStatusOutput struct {
	Status service.Status `json:"status" jsonschema:"build info and runtime counters"`
}

// VariableResource is the JSON body of a variable resource.
type VariableResource struct {
	service.ReadResult
	BrowseName string `json:"browse_name"`
	NodeID     string `json:"node_id"`
}
