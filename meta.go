package verdict

import (
	"time"

	"github.com/google/uuid"
)

// Version is the rule format version stamped into every freshly minted
// metadata block. Parsed components keep the version found in the file.
const Version = "1.0.0"

// Serialized "type" discriminators for metadata blocks.
const (
	typeRule      = "Rule"
	typeCondition = "Condition"
	typeAnd       = "AndCondition"
	typeOr        = "OrCondition"
	typeResult    = "Result"
)

// Metadata identifies a rule component: a format version, a type
// discriminator, a unique id and a creation timestamp. Rules
// additionally carry a name and, when nested under another rule, the
// parent rule's id. The required-context-parameters set that appears
// alongside these fields on the wire is always derived from the tree,
// never stored here.
type Metadata struct {
	Version  string
	Type     string
	ID       string
	Created  string
	Name     string
	ParentID string
}

// newMetadata mints metadata for a fresh component.
func newMetadata(componentType string) Metadata {
	return Metadata{
		Version: Version,
		Type:    componentType,
		ID:      uuid.NewString(),
		Created: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// toMap renders the metadata block, with the derived required-parameter
// names supplied by the owning component. Rules add name and parent_id;
// parent_id is null while the rule is not nested.
func (m Metadata) toMap(required []string) map[string]any {
	out := map[string]any{
		"version":                     m.Version,
		"type":                        m.Type,
		"id":                          m.ID,
		"created":                     m.Created,
		"required_context_parameters": required,
	}
	if m.Type == typeRule {
		out["name"] = m.Name
		if m.ParentID == "" {
			out["parent_id"] = nil
		} else {
			out["parent_id"] = m.ParentID
		}
	}
	return out
}
