package entities

import (
	"strings"
	"time"

	"mindgraph-backend/domain/core/valueobjects"
	pkgerrors "mindgraph-backend/pkg/errors"
)

// Category classifies what role a concept plays in the conversation
type Category string

const (
	CategoryInput    Category = "input"
	CategorySystem   Category = "system"
	CategoryAction   Category = "action"
	CategoryOutput   Category = "output"
	CategoryDecision Category = "decision"
)

// ParseCategory normalizes a free-form category string, falling back to
// CategorySystem for anything unrecognized. Model output is untrusted, so an
// unknown tag is tolerated rather than rejected.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryInput:
		return CategoryInput
	case CategoryAction:
		return CategoryAction
	case CategoryOutput:
		return CategoryOutput
	case CategoryDecision:
		return CategoryDecision
	default:
		return CategorySystem
	}
}

// Importance drives visual size and merge weighting
type Importance string

const (
	ImportanceSmall  Importance = "small"
	ImportanceMedium Importance = "medium"
	ImportanceLarge  Importance = "large"
)

// ParseImportance normalizes a free-form importance string
func ParseImportance(s string) Importance {
	switch Importance(strings.ToLower(strings.TrimSpace(s))) {
	case ImportanceSmall:
		return ImportanceSmall
	case ImportanceLarge:
		return ImportanceLarge
	default:
		return ImportanceMedium
	}
}

// SizeFor returns the rendered bounding box for an importance level
func SizeFor(importance Importance) valueobjects.Size {
	var size valueobjects.Size
	switch importance {
	case ImportanceSmall:
		size, _ = valueobjects.NewSize(140, 48)
	case ImportanceLarge:
		size, _ = valueobjects.NewSize(220, 76)
	default:
		size, _ = valueobjects.NewSize(180, 60)
	}
	return size
}

// Metadata carries node provenance. Known fields are modeled explicitly;
// anything else the caller wants preserved goes into Custom and is stored
// pass-through, one level deep.
type Metadata struct {
	SourceExcerpts []string
	MergedFrom     []string
	Custom         map[string]interface{}
}

// Node is the main entity representing one extracted concept.
// Fields are private so every mutation goes through a method that keeps the
// entity's invariants (label non-empty, position and size always populated).
type Node struct {
	id         valueobjects.NodeID
	label      string
	category   Category
	importance Importance
	position   valueobjects.Position
	size       valueobjects.Size
	metadata   Metadata
	createdAt  time.Time
	updatedAt  time.Time
}

// NewNode creates a new node with validation. Position is set by the caller
// (or the position allocator) before the node enters a graph.
func NewNode(label string, category Category, importance Importance, position valueobjects.Position) (*Node, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, pkgerrors.NewValidationError("node label cannot be empty")
	}

	now := time.Now()
	return &Node{
		id:         valueobjects.NewNodeID(),
		label:      label,
		category:   category,
		importance: importance,
		position:   position,
		size:       SizeFor(importance),
		metadata:   Metadata{Custom: make(map[string]interface{})},
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructNode rebuilds a node from caller-supplied parts, assigning a
// fresh ID when the given one is zero. Used by wholesale graph replacement.
func ReconstructNode(
	id valueobjects.NodeID,
	label string,
	category Category,
	importance Importance,
	position valueobjects.Position,
	createdAt time.Time,
) (*Node, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, pkgerrors.NewValidationError("node label cannot be empty")
	}
	if id.IsZero() {
		id = valueobjects.NewNodeID()
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &Node{
		id:         id,
		label:      label,
		category:   category,
		importance: importance,
		position:   position,
		size:       SizeFor(importance),
		metadata:   Metadata{Custom: make(map[string]interface{})},
		createdAt:  createdAt,
		updatedAt:  createdAt,
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Label returns the node's label
func (n *Node) Label() string {
	return n.label
}

// Category returns the node's category
func (n *Node) Category() Category {
	return n.category
}

// Importance returns the node's importance
func (n *Node) Importance() Importance {
	return n.importance
}

// Position returns the node's position
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Size returns the node's bounding box
func (n *Node) Size() valueobjects.Size {
	return n.size
}

// CreatedAt returns when the node was created
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last modified
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// Rename updates the node's label with validation
func (n *Node) Rename(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return pkgerrors.NewValidationError("node label cannot be empty")
	}
	if label == n.label {
		return nil
	}
	n.label = label
	n.updatedAt = time.Now()
	return nil
}

// Recategorize changes the node's category
func (n *Node) Recategorize(category Category) {
	n.category = category
	n.updatedAt = time.Now()
}

// SetImportance changes the importance level and the derived size
func (n *Node) SetImportance(importance Importance) {
	n.importance = importance
	n.size = SizeFor(importance)
	n.updatedAt = time.Now()
}

// MoveTo moves the node to a new position
func (n *Node) MoveTo(position valueobjects.Position) {
	if position.Equals(n.position) {
		return
	}
	n.position = position
	n.updatedAt = time.Now()
}

// AddSourceExcerpt records a provenance excerpt from the conversation
func (n *Node) AddSourceExcerpt(excerpt string) {
	excerpt = strings.TrimSpace(excerpt)
	if excerpt == "" {
		return
	}
	n.metadata.SourceExcerpts = append(n.metadata.SourceExcerpts, excerpt)
	n.updatedAt = time.Now()
}

// RecordMergedFrom remembers which node IDs were collapsed into this node
func (n *Node) RecordMergedFrom(ids []string) {
	n.metadata.MergedFrom = append(n.metadata.MergedFrom, ids...)
	n.updatedAt = time.Now()
}

// Metadata returns a copy of the node's metadata
func (n *Node) Metadata() Metadata {
	meta := Metadata{
		SourceExcerpts: append([]string(nil), n.metadata.SourceExcerpts...),
		MergedFrom:     append([]string(nil), n.metadata.MergedFrom...),
		Custom:         make(map[string]interface{}, len(n.metadata.Custom)),
	}
	for k, v := range n.metadata.Custom {
		meta.Custom[k] = v
	}
	return meta
}

// MergeCustomMetadata deep-merges the given bag into the node's custom
// metadata one level deep: nested maps are merged key-by-key, everything
// else is overwritten.
func (n *Node) MergeCustomMetadata(custom map[string]interface{}) {
	if len(custom) == 0 {
		return
	}
	if n.metadata.Custom == nil {
		n.metadata.Custom = make(map[string]interface{})
	}
	for k, v := range custom {
		existing, ok := n.metadata.Custom[k].(map[string]interface{})
		incoming, ok2 := v.(map[string]interface{})
		if ok && ok2 {
			for nk, nv := range incoming {
				existing[nk] = nv
			}
			continue
		}
		n.metadata.Custom[k] = v
	}
	n.updatedAt = time.Now()
}
