package domain

// Metadata carries the well-known per-component attributes plus an open
// passthrough bag for anything a diagram tool attaches that we do not
// interpret. Unknown keys survive a snapshot round-trip untouched.
type Metadata struct {
	Vendor             string   `json:"vendor,omitempty"`
	Version            string   `json:"version,omitempty"`
	Environment        string   `json:"environment,omitempty"`
	Features           []string `json:"features,omitempty"`
	Exposed            bool     `json:"exposed,omitempty"`
	Secured            bool     `json:"secured,omitempty"`
	Privileged         bool     `json:"privileged,omitempty"`
	DataClassification string   `json:"dataClassification,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// Component is a node in the architecture graph: a load balancer, database,
// firewall, identity provider and so on.
type Component struct {
	ID          string        `json:"id"`
	Type        ComponentType `json:"type"`
	Name        string        `json:"name"`
	Category    string        `json:"category,omitempty"`
	Zone        string        `json:"zone,omitempty"`
	Criticality Criticality   `json:"criticality,omitempty"`
	Metadata    Metadata      `json:"metadata,omitempty"`
}

// Connection is a typed edge between two components.
type Connection struct {
	ID         string   `json:"id"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Label      string   `json:"label,omitempty"`
	Protocol   string   `json:"protocol,omitempty"`
	Ports      []int    `json:"ports,omitempty"`
	Encryption string   `json:"encryption,omitempty"`
	Auth       string   `json:"auth,omitempty"`
	DataClass  string   `json:"dataClass,omitempty"`
	Controls   []string `json:"controls,omitempty"`
}

// Graph is the raw component/connection lists as supplied by a caller,
// before structural validation.
type Graph struct {
	Components  []Component  `json:"components"`
	Connections []Connection `json:"connections"`
}
