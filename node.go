// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"errors"
	"strings"
)

// Node is an element of an expanded tree. A folder node stands for a nested archive
// that was expanded successfully, every other node is a leaf.
type Node struct {
	// Name is the full entry name as emitted by the codec
	Name string

	// DisplayName is the name without the archive suffix for folders, the full name otherwise
	DisplayName string

	// Kind is the classification of the entry
	Kind ContentKind

	// Data holds the raw bytes of the entry. For folders these are the compressed bytes.
	Data []byte

	// Children of a folder, in the order the codec emitted them
	Children []*Node

	// ExpandErr is set on a nested archive that could not be expanded and is kept as leaf
	ExpandErr error

	folder bool
}

// IsFolder reports whether n is an expanded nested archive.
func (n *Node) IsFolder() bool {
	return n.folder
}

// IsDegraded reports whether n is a nested archive that failed to expand.
func (n *Node) IsDegraded() bool {
	return n.ExpandErr != nil
}

// Label returns the text a user interface shows for n.
func (n *Node) Label() string {
	if n.DisplayName != "" {
		return n.DisplayName
	}
	return n.Name
}

// IconClass returns the icon hint of n.
func (n *Node) IconClass() string {
	if n.folder {
		return "folder-icon"
	}
	return n.Kind.IconClass()
}

// Size returns the number of raw bytes of n.
func (n *Node) Size() int64 {
	return int64(len(n.Data))
}

// PreviewKind returns the kind to preview n with. Degraded archives are previewed
// as binary.
func (n *Node) PreviewKind() ContentKind {
	if n.IsDegraded() {
		return kindBinary
	}
	return n.Kind
}

// Entry returns the raw entry of n, e.g. to preview or download it.
func (n *Node) Entry() RawEntry {
	return RawEntry{Name: n.Name, Data: n.Data}
}

// SkipFolder is used as a return value from a [WalkFunc] to indicate that the
// children of the folder in the call are to be skipped.
var SkipFolder = errors.New("skip this folder")

// WalkFunc is called by [Walk] for every node. p is the flattened path of the node.
type WalkFunc func(p string, n *Node) error

// Walk calls fn for every node below root in pre-order, left to right. Folder paths
// are built from display names, leaf paths end with the full entry name. Absolute
// names, backslashes and "." or ".." elements are removed from every name.
func Walk(root *Node, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	err := walk("", root.Children, fn)
	if err == SkipFolder {
		return nil
	}
	return err
}

func walk(prefix string, nodes []*Node, fn WalkFunc) error {
	for _, n := range nodes {
		name := n.Name
		if n.folder {
			name = n.Label()
		}
		p := joinPath(prefix, cleanName(name))

		err := fn(p, n)
		if err == SkipFolder && n.folder {
			continue
		}
		if err != nil {
			return err
		}

		if n.folder {
			if err := walk(p, n.Children, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// cleanName turns an entry name into a relative path with forward slashes. Empty, "."
// and ".." elements are dropped, so the path stays below its folder.
func cleanName(name string) string {
	elems := strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' })
	kept := elems[:0]
	for _, e := range elems {
		if e == "." || e == ".." {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return defaultDecompressionName
	}
	return strings.Join(kept, "/")
}

// joinPath joins prefix and name with a forward slash.
func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
