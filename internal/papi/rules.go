package papi

import (
	"strings"

	"github.com/edgeshift/edgeshift/internal/store"
)

// Flatten returns every node of a rule tree exactly once, via a stack-based
// depth-first walk. Sibling order is not preserved and callers must not rely
// on it; classification is an order-insensitive aggregation. Cyclic children
// graphs are not expected and not guarded against.
func Flatten(root *Rule) []*Rule {
	if root == nil {
		return nil
	}
	var nodes []*Rule
	stack := []*Rule{root}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes = append(nodes, current)
		for i := range current.Children {
			stack = append(stack, &current.Children[i])
		}
	}
	return nodes
}

// Classify walks a rule tree and buckets behaviors by migration concern.
//
// The name set is fixed:
//
//   - "caching" → cache
//   - "redirect" / "responseCode" with non-empty options → redirects
//   - "modifyOutgoingResponseHeader" / "modifyOutgoingRequestHeader" → headers
//   - "hsts", "httpStrictTransportSecurity", "setHsts", or
//     "setResponseHeader" whose headerName equals strict-transport-security
//     (case-insensitive) → hsts
//
// The header-name check applies only to setResponseHeader; the named HSTS
// behaviors match unconditionally. Behaviors matching nothing are dropped.
func Classify(root *Rule) store.RuleBundle {
	var bundle store.RuleBundle
	for _, node := range Flatten(root) {
		for _, behavior := range node.Behaviors {
			name := behavior.Name
			options := behavior.Options
			switch {
			case name == "caching":
				bundle.Cache = append(bundle.Cache, options)
			case (name == "redirect" || name == "responseCode") && len(options) > 0:
				bundle.Redirects = append(bundle.Redirects, options)
			case name == "modifyOutgoingResponseHeader" || name == "modifyOutgoingRequestHeader":
				bundle.Headers = append(bundle.Headers, store.HeaderDirective{
					Directive: name,
					Options:   options,
				})
			case name == "hsts" || name == "httpStrictTransportSecurity" || name == "setHsts" ||
				(name == "setResponseHeader" && isSTSHeader(options)):
				bundle.HSTS = append(bundle.HSTS, options)
			}
		}
	}
	return bundle
}

func isSTSHeader(options store.Options) bool {
	name, _ := options["headerName"].(string)
	return strings.EqualFold(name, "strict-transport-security")
}
