package service

// NodeInfo describes a node without reading its value.
type NodeInfo struct {
	ID          string `json:"id" jsonschema:"node identifier assigned at startup"`
	BrowseName  string `json:"browse_name" jsonschema:"name unique within the parent"`
	DisplayName string `json:"display_name" jsonschema:"human-readable name"`
	Path        string `json:"path" jsonschema:"slash-separated browse path from the root"`
	Class       string `json:"class" jsonschema:"Container or Variable"`
	DataType    string `json:"data_type,omitempty" jsonschema:"declared type of a variable: Double, Int32, String or DateTime"`
	URI         string `json:"uri,omitempty" jsonschema:"resource URI of a variable"`
	Children    int    `json:"children" jsonschema:"number of direct children"`
}

// BrowseResult is a node and its direct children.
type BrowseResult struct {
	Node     NodeInfo   `json:"node" jsonschema:"the browsed node"`
	Children []NodeInfo `json:"children" jsonschema:"direct children in creation order"`
}

// ReadResult is the outcome of reading one path. Exactly one of Value and
// Error is meaningful.
type ReadResult struct {
	Path            string `json:"path" jsonschema:"requested path"`
	DisplayName     string `json:"display_name,omitempty" jsonschema:"display name of the variable"`
	DataType        string `json:"data_type,omitempty" jsonschema:"declared type of the variable"`
	Value           any    `json:"value,omitempty" jsonschema:"current value; DateTime values are RFC 3339 strings"`
	SourceTimestamp string `json:"source_timestamp,omitempty" jsonschema:"when the value was evaluated"`
	Error           string `json:"error,omitempty" jsonschema:"why the read failed"`
}

// Status reports build info and runtime counters.
type Status struct {
	ServerName    string  `json:"server_name" jsonschema:"implementation name"`
	Version       string  `json:"version" jsonschema:"implementation version"`
	ProductName   string  `json:"product_name" jsonschema:"product name from build info"`
	BuildNumber   string  `json:"build_number" jsonschema:"build number from build info"`
	BuildDate     string  `json:"build_date,omitempty" jsonschema:"build date from build info"`
	StartTime     string  `json:"start_time" jsonschema:"when the server started"`
	CurrentTime   string  `json:"current_time" jsonschema:"server wall clock"`
	UptimeSeconds float64 `json:"uptime_seconds" jsonschema:"seconds since start"`
	Ticks         uint64  `json:"ticks" jsonschema:"ticks performed by the counter process"`
	Counter       int32   `json:"counter" jsonschema:"current counter value"`
	Variables     int     `json:"variables" jsonschema:"number of variables in the namespace"`
}
