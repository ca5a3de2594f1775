package adf

import "github.com/pkg/errors"

// SkipChildren returned from a WalkFunc skips the node's content.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every node in depth-first pre-order.
type WalkFunc func(path Path, n *Node) error

// Walk traverses the tree rooted at root depth first. Returning SkipChildren
// from fn prunes the subtree; any other error stops the walk and is returned.
func Walk(root *Node, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	err := walk(Path{}, root, fn)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	return err
}

func walk(path Path, n *Node, fn WalkFunc) error {
	if err := fn(path, n); err != nil {
		return err
	}
	for i, child := range n.Content {
		if child == nil {
			continue
		}
		if err := walk(path.Child(i), child, fn); err != nil {
			if errors.Is(err, SkipChildren) {
				continue
			}
			return err
		}
	}
	return nil
}

// At returns the node at path, or nil when the path does not exist.
func At(root *Node, path Path) *Node {
	n := root
	for _, i := range path {
		if n == nil || i < 0 || i >= len(n.Content) {
			return nil
		}
		n = n.Content[i]
	}
	return n
}

// CountTypes returns how many nodes of each kind the tree holds.
func CountTypes(root *Node) map[NodeType]int {
	counts := make(map[NodeType]int)
	_ = Walk(root, func(_ Path, n *Node) error {
		counts[n.Type]++
		return nil
	})
	return counts
}
