// Package manifest builds a complete picture of the origin server's
// directory structure. The manifest preserves the original layout so files
// can be sorted or regrouped at the destination after upload, where disc
// images appear under their remuxed names.
package manifest

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"time"

	"github.com/Copi24/ftptogpmc/remote"
)

type FileEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// DirectoryNode is one directory in the tree. Totals roll up from children
// to parents.
type DirectoryNode struct {
	Type           string           `json:"type"`
	Name           string           `json:"name"`
	Path           string           `json:"path"`
	Files          []FileEntry      `json:"files"`
	Subdirectories []*DirectoryNode `json:"subdirectories"`
	TotalFiles     int              `json:"total_files"`
	TotalSize      int64            `json:"total_size"`
}

// Scan traverses the remote tree depth-first and builds the full structure.
// Listing errors leave the affected directory empty rather than failing the
// whole scan.
func Scan(ctx context.Context, lister remote.Lister, dirPath string) (*DirectoryNode, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	name := path.Base(dirPath)
	if dirPath == "" {
		name = "root"
	}
	node := &DirectoryNode{
		Type:           "directory",
		Name:           name,
		Path:           dirPath,
		Files:          make([]FileEntry, 0),
		Subdirectories: make([]*DirectoryNode, 0),
	}

	entries, err := lister.ListFiles(ctx, dirPath)
	if err == nil {
		for _, e := range entries {
			fullPath := e.Name
			if dirPath != "" {
				fullPath = dirPath + "/" + e.Name
			}
			node.Files = append(node.Files, FileEntry{
				Name:      e.Name,
				Path:      fullPath,
				SizeBytes: e.SizeBytes,
			})
			node.TotalSize += e.SizeBytes
		}
		node.TotalFiles = len(node.Files)
	}

	subdirs, err := lister.ListDirectories(ctx, dirPath)
	if err != nil {
		return node, nil
	}
	for _, subdir := range subdirs {
		subPath := subdir
		if dirPath != "" {
			subPath = dirPath + "/" + subdir
		}
		subtree, err := Scan(ctx, lister, subPath)
		if err != nil {
			return nil, err
		}
		node.Subdirectories = append(node.Subdirectories, subtree)
		node.TotalFiles += subtree.TotalFiles
		node.TotalSize += subtree.TotalSize
	}

	return node, nil
}

type Metadata struct {
	GeneratedAt string `json:"generated_at"`
	Remote      string `json:"remote"`
	Note        string `json:"note,omitempty"`
}

type Document struct {
	Metadata   Metadata       `json:"metadata"`
	Structure  *DirectoryNode `json:"structure"`
	Statistics Statistics     `json:"statistics"`
}

type Statistics struct {
	TotalFiles     int   `json:"total_files"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}

// WriteJSON saves the manifest document, temp-then-rename like every other
// durable artifact around here.
func WriteJSON(node *DirectoryNode, remoteName string, outputPath string) error {
	doc := Document{
		Metadata: Metadata{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Remote:      remoteName,
			Note:        "Disc images are uploaded under their remuxed (.mkv) names",
		},
		Structure: node,
		Statistics: Statistics{
			TotalFiles:     node.TotalFiles,
			TotalSizeBytes: node.TotalSize,
		},
	}

	b, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := outputPath + ".tmp"
	if err = os.WriteFile(tmp, b, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, outputPath)
}
