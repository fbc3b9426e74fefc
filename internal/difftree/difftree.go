// Package difftree renders structural differences between two Value
// trees and line-level differences between two byte buffers (the
// unified diff --lint prints on a round-trip mismatch).
package difftree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pbxfmt/pbx/pbxval"
)

// Mismatch is one point of difference between two trees, rooted at Path.
type Mismatch struct {
	Path string
	Want string
	Got  string
}

// String renders m as one "path: want X, got Y" report line.
func (m Mismatch) String() string {
	return fmt.Sprintf("%s: want %s, got %s", m.Path, m.Want, m.Got)
}

// Compare walks want and got together and returns every point where
// they diverge, depth-first, dictionary keys in sorted order so the
// report is deterministic regardless of either tree's own key order.
func Compare(want, got pbxval.Value) []Mismatch {
	return compareAt("$", want, got, nil)
}

func compareAt(path string, want, got pbxval.Value, out []Mismatch) []Mismatch {
	switch w := want.(type) {
	case pbxval.String:
		g, ok := got.(pbxval.String)
		if !ok || w != g {
			out = append(out, Mismatch{Path: path, Want: describe(want), Got: describe(got)})
		}
	case pbxval.Data:
		g, ok := got.(pbxval.Data)
		if !ok || string(w) != string(g) {
			out = append(out, Mismatch{Path: path, Want: describe(want), Got: describe(got)})
		}
	case pbxval.Sequence:
		g, ok := got.(pbxval.Sequence)
		if !ok {
			out = append(out, Mismatch{Path: path, Want: describe(want), Got: describe(got)})
			return out
		}
		if len(w) != len(g) {
			out = append(out, Mismatch{Path: path, Want: fmt.Sprintf("array of %d", len(w)), Got: fmt.Sprintf("array of %d", len(g))})
		}
		for i := 0; i < len(w) && i < len(g); i++ {
			out = compareAt(fmt.Sprintf("%s[%d]", path, i), w[i], g[i], out)
		}
	case *pbxval.Mapping:
		g, ok := got.(*pbxval.Mapping)
		if !ok {
			out = append(out, Mismatch{Path: path, Want: describe(want), Got: describe(got)})
			return out
		}
		keys := map[string]bool{}
		for _, k := range w.Keys() {
			keys[k] = true
		}
		for _, k := range g.Keys() {
			keys[k] = true
		}
		sorted := make([]string, 0, len(keys))
		for k := range keys {
			sorted = append(sorted, k)
		}
		sort.Strings(sorted)
		for _, k := range sorted {
			wv, wok := w.Get(k)
			gv, gok := g.Get(k)
			childPath := path + "." + k
			switch {
			case wok && !gok:
				out = append(out, Mismatch{Path: childPath, Want: describe(wv), Got: "(missing)"})
			case !wok && gok:
				out = append(out, Mismatch{Path: childPath, Want: "(missing)", Got: describe(gv)})
			default:
				out = compareAt(childPath, wv, gv, out)
			}
		}
	}
	return out
}

func describe(v pbxval.Value) string {
	switch v := v.(type) {
	case pbxval.String:
		return fmt.Sprintf("%q", string(v))
	case pbxval.Data:
		return fmt.Sprintf("<%d bytes>", len(v))
	case pbxval.Sequence:
		return fmt.Sprintf("array of %d", len(v))
	case *pbxval.Mapping:
		return fmt.Sprintf("dict of %d", v.Len())
	default:
		return "(nil)"
	}
}

// UnifiedLines renders a minimal unified diff between a and b, labeled
// aName/bName, using the classic longest-common-subsequence line
// alignment — adequate at the line counts a single project.pbxproj
// produces without pulling in a dedicated diff library.
func UnifiedLines(aName, bName string, a, b []byte) string {
	aLines := strings.Split(string(a), "\n")
	bLines := strings.Split(string(b), "\n")
	ops := lcsDiff(aLines, bLines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n", aName)
	fmt.Fprintf(&sb, "+++ %s\n", bName)
	for _, op := range ops {
		switch op.kind {
		case opEqual:
			fmt.Fprintf(&sb, "  %s\n", op.line)
		case opDelete:
			fmt.Fprintf(&sb, "- %s\n", op.line)
		case opInsert:
			fmt.Fprintf(&sb, "+ %s\n", op.line)
		}
	}
	return sb.String()
}

type opKind int

const (
	opEqual opKind = iota
	opDelete
	opInsert
)

type lineOp struct {
	kind opKind
	line string
}

func lcsDiff(a, b []string) []lineOp {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}
	var ops []lineOp
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			ops = append(ops, lineOp{opEqual, a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, lineOp{opDelete, a[i]})
			i++
		default:
			ops = append(ops, lineOp{opInsert, b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, lineOp{opDelete, a[i]})
	}
	for ; j < m; j++ {
		ops = append(ops, lineOp{opInsert, b[j]})
	}
	return ops
}
