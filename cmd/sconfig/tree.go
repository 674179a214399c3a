package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zoobzio/sconfig"
)

// lookup walks a plain tree. Map keys match ignoring case; list items are
// addressed by index.
func lookup(tree any, path []string) (any, error) {
	cur := tree
	for i, seg := range path {
		switch x := cur.(type) {
		case map[string]any:
			v, ok := x[seg]
			if !ok {
				found := false
				for k, item := range x {
					if strings.EqualFold(k, seg) {
						v, found = item, true
						break
					}
				}
				if !found {
					return nil, &sconfig.PathError{Path: path, At: i}
				}
			}
			cur = v
		case []any:
			n, err := strconv.Atoi(seg)
			if err != nil || n < 0 || n >= len(x) {
				return nil, &sconfig.PathError{Path: path, At: i}
			}
			cur = x[n]
		default:
			return nil, &sconfig.PathError{Path: path, At: i}
		}
	}
	return cur, nil
}

// leafPaths lists the dotted paths of every scalar in a tree, skipping type
// tags.
func leafPaths(tree any, prefix string) []string {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}

	switch x := tree.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			if k != sconfig.TypeKey {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			out = append(out, leafPaths(x[k], join(k))...)
		}
		return out
	case []any:
		var out []string
		for i, item := range x {
			out = append(out, leafPaths(item, join(fmt.Sprint(i)))...)
		}
		return out
	}
	if prefix == "" {
		return nil
	}
	return []string{prefix}
}
