// Package threads assembles flat comment lists into reply trees and applies
// localized edits to an already-built tree. It performs no I/O: the
// authoritative state lives in the database, and callers are expected to
// mutate a tree only after the corresponding write has succeeded there.
package threads

import "moodblog/internal/models"

// Node is a comment decorated with its direct replies. Nodes are built fresh
// on every fetch and are never persisted.
type Node struct {
	models.Comment
	Replies []*Node `json:"replies"`
}

// Build converts the flat comment list for a single post into a forest of
// reply trees. The input must be in ascending creation-time order; that order
// is preserved for top-level comments and for the replies under each parent.
// Parents may appear anywhere relative to their children.
//
// A comment whose parent id does not resolve (parent already deleted, or the
// comment lists itself as its own parent) is promoted to a root instead of
// being dropped: showing user content wins over strict tree shape.
func Build(comments []*models.Comment) []*Node {
	nodes := make(map[uint]*Node, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &Node{Comment: *c, Replies: []*Node{}}
	}

	roots := make([]*Node, 0, len(comments))
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentID]
		if !ok || *c.ParentID == c.ID {
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}
	return roots
}

// UpdateContent replaces the content of the comment with the given id,
// leaving its replies untouched. Missing ids are a no-op: the caller is
// responsible for having confirmed the update against storage first.
func UpdateContent(forest []*Node, id uint, content string) {
	if node := find(forest, id); node != nil {
		node.Content = content
	}
}

// RemoveSubtree removes the comment with the given id together with its
// entire reply subtree, mirroring the cascade delete performed by the
// comment repository. Children are never promoted into the removed node's
// position. removed reports whether anything was deleted.
func RemoveSubtree(forest []*Node, id uint) (result []*Node, removed bool) {
	for i, node := range forest {
		if node.ID == id {
			return append(forest[:i:i], forest[i+1:]...), true
		}
		if replies, ok := RemoveSubtree(node.Replies, id); ok {
			node.Replies = replies
			return forest, true
		}
	}
	return forest, false
}

// Count returns the total number of nodes in the forest, replies included.
func Count(forest []*Node) int {
	n := len(forest)
	for _, node := range forest {
		n += Count(node.Replies)
	}
	return n
}

func find(forest []*Node, id uint) *Node {
	for _, node := range forest {
		if node.ID == id {
			return node
		}
		if match := find(node.Replies, id); match != nil {
			return match
		}
	}
	return nil
}
