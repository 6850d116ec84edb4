package app

import "context"

// maxHierarchyDepth caps traversal in case the stored forest is corrupted
// into something deeper than any real category tree.
const maxHierarchyDepth = 32

// DescendantIDs resolves a category to itself plus every active, non-deleted
// descendant. Traversal is an explicit worklist with a visited set, so a
// cyclic parent chain in the store terminates instead of recursing forever.
// A failed child lookup drops that subtree rather than failing the whole
// resolution.
func (s *Service) DescendantIDs(ctx context.Context, categoryID string) ([]string, error) {
	visited := map[string]struct{}{categoryID: {}}
	out := []string{categoryID}

	type frame struct {
		id    string
		depth int
	}
	work := []frame{{id: categoryID, depth: 0}}

	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		if cur.depth >= maxHierarchyDepth {
			continue
		}

		children, err := s.categories.Children(ctx, cur.id)
		if err != nil {
			continue
		}
		for _, child := range children {
			if !child.Visible() {
				continue
			}
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}
			out = append(out, child.ID)
			work = append(work, frame{id: child.ID, depth: cur.depth + 1})
		}
	}

	return out, nil
}
