package views

import "github.com/matt-steen/taskboard/pkg/models"

// TreeNode is a project with its sub-projects.
type TreeNode struct {
	Project  models.Project
	Depth    int
	Children []TreeNode
}

// ProjectTree nests projects under their parents, keeping the given order among siblings.
// Projects whose parent is missing are shown at the top level.
func ProjectTree(projects []models.Project) []TreeNode {
	known := make(map[string]bool, len(projects))
	for _, p := range projects {
		known[p.ID] = true
	}

	children := map[string][]models.Project{}
	roots := []models.Project{}

	for _, p := range projects {
		if p.ParentID == nil || !known[*p.ParentID] {
			roots = append(roots, p)

			continue
		}

		children[*p.ParentID] = append(children[*p.ParentID], p)
	}

	visited := map[string]bool{}

	var build func(p models.Project, depth int) TreeNode
	build = func(p models.Project, depth int) TreeNode {
		visited[p.ID] = true
		node := TreeNode{Project: p.Clone(), Depth: depth, Children: []TreeNode{}}

		for _, c := range children[p.ID] {
			if !visited[c.ID] {
				node.Children = append(node.Children, build(c, depth+1))
			}
		}

		return node
	}

	tree := make([]TreeNode, 0, len(roots))
	for _, r := range roots {
		tree = append(tree, build(r, 0))
	}

	return tree
}

// Flatten lists the nodes depth-first, parents before their children.
func Flatten(tree []TreeNode) []TreeNode {
	out := []TreeNode{}

	for _, n := range tree {
		out = append(out, n)
		out = append(out, Flatten(n.Children)...)
	}

	return out
}
