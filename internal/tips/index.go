package tips

import "github.com/riverbend-maps/gagemap/internal/model"

// ResolvePosition locates a tip within its group for mutation. An id is
// always preferred over an index, because positions shift under concurrent
// deletes in the same group. With only an index, it is returned verbatim and
// the caller must bounds-check it against the group. Returns false when
// neither identifies a tip.
func ResolvePosition(group []model.Tip, id string, index *int) (int, bool) {
	if id != "" {
		for i, t := range group {
			if t.ID == id {
				return i, true
			}
		}
		return 0, false
	}
	if index != nil {
		return *index, true
	}
	return 0, false
}
