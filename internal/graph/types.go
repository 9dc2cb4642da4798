package graph

type NodeKind string

const (
	NodePerson      NodeKind = "person"
	NodePartnership NodeKind = "partnership"
)

type Role string

const (
	RoleFocal  Role = "focal"
	RoleFamily Role = "family"
)

type EdgeKind string

const (
	// EdgeMembership joins a partner to a partnership node.
	EdgeMembership EdgeKind = "partnership-membership"
	// EdgeParentage joins a partnership, or a lone parent, to a child.
	EdgeParentage EdgeKind = "parentage"
)

// Partnership describes a synthetic co-parent node.
type Partnership struct {
	Partners [2]string `json:"partners"`
	Index    int       `json:"index"`
	Color    string    `json:"color"`
}

// Node is either a person or a partnership.
type Node struct {
	ID          string       `json:"id"`
	Kind        NodeKind     `json:"kind"`
	Label       string       `json:"label,omitempty"`
	Sex         string       `json:"sex,omitempty"`
	Role        Role         `json:"role,omitempty"`
	Partnership *Partnership `json:"partnership,omitempty"`
}

type Edge struct {
	ID   string   `json:"id"`
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}
