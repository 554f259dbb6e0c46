package tips

import "github.com/riverbend-maps/gagemap/internal/model"

// VisibleTo filters a tip group for a viewer: published tips are visible to
// everyone, drafts only to their author. Insertion order is preserved;
// display sorting is a presentation concern.
func VisibleTo(group []model.Tip, viewerID string) []model.Tip {
	visible := make([]model.Tip, 0, len(group))
	for _, t := range group {
		if t.Status == model.TipStatusPublished {
			visible = append(visible, t)
			continue
		}
		if viewerID != "" && t.UserID == viewerID {
			visible = append(visible, t)
		}
	}
	return visible
}
