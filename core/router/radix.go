// Package router provides per-method radix trees matching request paths to
// services, with :name parameter and *name catch-all capture.
package router

import (
	"github.com/Txuritan/enrgy/core/http"
)

// Param is one captured (name, value) pair. Params are returned in the order
// the placeholders appear in the route pattern.
type Param struct {
	Name  string
	Value string
}

// Router maps request methods to their path matchers.
type Router struct {
	trees map[string]*Tree
}

// New creates an empty router.
func New() *Router {
	return &Router{trees: make(map[string]*Tree)}
}

// Add registers a service under a method and path pattern. Malformed
// patterns panic: registration happens once at startup and a bad pattern is
// a programmer error.
func (r *Router) Add(method, path string, svc http.Service) {
	if len(path) == 0 || path[0] != '/' {
		panic("router: path must begin with '/'")
	}
	if svc == nil {
		panic("router: nil service")
	}

	tree := r.trees[method]
	if tree == nil {
		tree = &Tree{root: &node{}}
		r.trees[method] = tree
	}
	tree.add(path, svc)
}

// Lookup returns the matcher for a method, or nil when no route was
// registered under it.
func (r *Router) Lookup(method string) *Tree {
	return r.trees[method]
}

// Tree is the radix tree for a single method.
type Tree struct {
	root *node
}

type nodeType uint8

const (
	static   nodeType = iota // default
	param                    // :name
	catchAll                 // *name
)

type node struct {
	path      string
	indices   string
	children  []*node
	service   http.Service
	nType     nodeType
	paramName string
}

// addChild appends a child, keeping any wildcard child in the last slot so
// indices[i] always corresponds to children[i] for static children.
func (n *node) addChild(child *node) {
	if child.nType == static && len(n.children) > 0 && n.children[len(n.children)-1].nType != static {
		wild := n.children[len(n.children)-1]
		n.children[len(n.children)-1] = child
		n.children = append(n.children, wild)
		return
	}
	n.children = append(n.children, child)
}

func (t *Tree) add(path string, svc http.Service) {
	n := t.root

	// Empty tree
	if n.path == "" && len(n.children) == 0 {
		n.insertChild(path, svc)
		return
	}

	for {
		i := longestCommonPrefix(path, n.path)

		// Split edge
		if i < len(n.path) {
			child := &node{
				path:      n.path[i:],
				indices:   n.indices,
				children:  n.children,
				service:   n.service,
				nType:     n.nType,
				paramName: n.paramName,
			}

			n.children = []*node{child}
			n.indices = string(n.path[i])
			n.path = path[:i]
			n.service = nil
			n.nType = static
			n.paramName = ""
		}

		// Descend or insert the remainder
		if i < len(path) {
			path = path[i:]
			idxc := path[0]

			matched := false
			for j := 0; j < len(n.indices); j++ {
				if n.indices[j] == idxc {
					n = n.children[j]
					matched = true
					break
				}
			}
			if matched {
				continue
			}

			if idxc == ':' || idxc == '*' {
				if len(n.children) > 0 {
					last := n.children[len(n.children)-1]
					if last.nType != static {
						wildcard, _, _ := findWildcard(path)
						if last.path != wildcard {
							panic("router: wildcard " + wildcard + " conflicts with existing " + last.path)
						}

						// Same wildcard; descend past it
						n = last
						path = path[len(wildcard):]
						if path == "" {
							n.service = svc
							return
						}
						if len(n.children) > 0 {
							n = n.children[0]
							continue
						}
						child := &node{}
						n.addChild(child)
						child.insertChild(path, svc)
						return
					}
				}
				n.insertChild(path, svc)
				return
			}

			n.indices += string(idxc)
			child := &node{}
			n.addChild(child)
			child.insertChild(path, svc)
			return
		}

		n.service = svc
		return
	}
}

// insertChild inserts the remaining path below n, peeling off wildcard
// segments into their own nodes.
func (n *node) insertChild(path string, svc http.Service) {
	for {
		wildcard, i, valid := findWildcard(path)
		if i < 0 {
			break
		}
		if !valid {
			panic("router: only one wildcard per path segment is allowed")
		}
		if len(wildcard) < 2 {
			panic("router: wildcards must be named")
		}

		if wildcard[0] == ':' {
			if i > 0 {
				n.path = path[:i]
				path = path[i:]
			}

			child := &node{
				nType:     param,
				path:      wildcard,
				paramName: wildcard[1:],
			}
			n.addChild(child)
			n = child

			// More path after the wildcard: continue below it
			if len(wildcard) < len(path) {
				path = path[len(wildcard):]
				child := &node{}
				n.addChild(child)
				n = child
				continue
			}

			n.service = svc
			return
		}

		// catchAll
		if i+len(wildcard) != len(path) {
			panic("router: catch-all routes are only allowed at the end of the path")
		}

		n.path = path[:i]
		child := &node{
			nType:     catchAll,
			path:      wildcard,
			paramName: wildcard[1:],
			service:   svc,
		}
		n.addChild(child)
		return
	}

	n.path = path
	n.service = svc
}

// Find matches a path against the tree, returning the bound service and the
// captured parameters in pattern order.
func (t *Tree) Find(path string) (http.Service, []Param, bool) {
	if t == nil || t.root == nil {
		return nil, nil, false
	}

	n := t.root
	var params []Param

	for {
		prefix := n.path

		if len(path) > len(prefix) {
			if path[:len(prefix)] != prefix {
				return nil, nil, false
			}
			path = path[len(prefix):]

			// Static children first
			idxc := path[0]
			matched := false
			for i := 0; i < len(n.indices); i++ {
				if n.indices[i] == idxc {
					n = n.children[i]
					matched = true
					break
				}
			}
			if matched {
				continue
			}

			// Then a wildcard child, always kept last
			if len(n.children) > 0 {
				last := n.children[len(n.children)-1]
				if last.nType != static {
					n = last

					switch n.nType {
					case param:
						end := 0
						for end < len(path) && path[end] != '/' {
							end++
						}
						params = append(params, Param{Name: n.paramName, Value: path[:end]})

						if end < len(path) {
							if len(n.children) > 0 {
								path = path[end:]
								n = n.children[0]
								continue
							}
							return nil, nil, false
						}

						if n.service != nil {
							return n.service, params, true
						}
						return nil, nil, false

					case catchAll:
						params = append(params, Param{Name: n.paramName, Value: path})
						if n.service != nil {
							return n.service, params, true
						}
						return nil, nil, false
					}
				}
			}

			return nil, nil, false
		}

		if path != prefix {
			return nil, nil, false
		}

		if n.service != nil {
			return n.service, params, true
		}
		return nil, nil, false
	}
}

// findWildcard locates the first ':' or '*' segment. valid is false when the
// segment contains a second wildcard byte.
func findWildcard(path string) (wildcard string, i int, valid bool) {
	for start := 0; start < len(path); start++ {
		c := path[start]
		if c != ':' && c != '*' {
			continue
		}

		valid = true
		for end := start + 1; end < len(path); end++ {
			switch path[end] {
			case '/':
				return path[start:end], start, valid
			case ':', '*':
				valid = false
			}
		}
		return path[start:], start, valid
	}
	return "", -1, false
}

func longestCommonPrefix(a, b string) int {
	i := 0
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for i < max && a[i] == b[i] {
		i++
	}
	return i
}
