package model

// Member is a workspace membership record. The same user may hold
// memberships in several workspaces, so aggregations dedup by UserID.
type Member struct {
	ID          string `json:"id" yaml:"id"`
	WorkspaceID string `json:"workspace_id" yaml:"workspace_id"`
	UserID      string `json:"user_id" yaml:"user_id"`
	Role        string `json:"role,omitempty" yaml:"role,omitempty"`
}

// DedupMembers returns the members with duplicate UserIDs removed,
// preserving first-seen order.
func DedupMembers(members []Member) []Member {
	seen := make(map[string]bool, len(members))
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		out = append(out, m)
	}
	return out
}
