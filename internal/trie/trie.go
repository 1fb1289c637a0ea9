// Package trie implements the prefix index over definition names. Values are
// stored at terminal nodes; keys are never pruned once added (removal happens
// in the definition index, orphaned names are harmless to keep).
package trie

type node struct {
	children map[byte]*node
	values   map[string]bool
}

func newNode() *node {
	return &node{children: make(map[byte]*node)}
}

type Trie struct {
	root *node
	keys int
}

func New() *Trie {
	return &Trie{root: newNode()}
}

// Add stores value at the terminal node for key, creating nodes as needed.
func (t *Trie) Add(key, value string) {
	n := t.root
	for i := 0; i < len(key); i++ {
		child, ok := n.children[key[i]]
		if !ok {
			child = newNode()
			n.children[key[i]] = child
		}
		n = child
	}
	if n.values == nil {
		n.values = make(map[string]bool)
		t.keys++
	}
	n.values[value] = true
}

// FindPrefix collects all values stored at or below the prefix node. Order
// is not significant. An unknown prefix yields nil.
func (t *Trie) FindPrefix(prefix string) []string {
	n := t.root
	for i := 0; i < len(prefix); i++ {
		child, ok := n.children[prefix[i]]
		if !ok {
			return nil
		}
		n = child
	}

	var out []string
	stack := []*node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for v := range cur.values {
			out = append(out, v)
		}
		for _, child := range cur.children {
			stack = append(stack, child)
		}
	}
	return out
}

// Len returns the number of distinct keys ever added.
func (t *Trie) Len() int {
	return t.keys
}
