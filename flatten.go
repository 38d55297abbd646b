// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

// FlatFile is a leaf of an expanded tree with its path-qualified name.
type FlatFile struct {
	// Path is built from the display names of all ancestor folders and the leaf name,
	// joined by forward slashes
	Path string

	// Data holds the raw bytes of the leaf
	Data []byte
}

// Flatten returns one [FlatFile] per leaf below root, in pre-order, left to right.
// Degraded nested archives are leaves and keep their full name.
func Flatten(root *Node) []FlatFile {
	var files []FlatFile
	_ = Walk(root, func(p string, n *Node) error {
		if !n.IsFolder() {
			files = append(files, FlatFile{Path: p, Data: n.Data})
		}
		return nil
	})
	return files
}
