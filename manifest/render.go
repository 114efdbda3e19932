package manifest

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// RenderText produces a human-readable tree with box-drawing connectors,
// suitable for eyeballing what lives where without opening the JSON.
func RenderText(node *DirectoryNode) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s/ (%d files, %s)\n", node.Name, node.TotalFiles, humanize.IBytes(uint64(node.TotalSize))))
	renderChildren(&sb, node, "")
	return sb.String()
}

func renderChildren(sb *strings.Builder, node *DirectoryNode, prefix string) {
	total := len(node.Files) + len(node.Subdirectories)
	i := 0

	for _, f := range node.Files {
		i++
		connector := "├── "
		if i == total {
			connector = "└── "
		}
		sb.WriteString(fmt.Sprintf("%s%s%s (%s)\n", prefix, connector, f.Name, humanize.IBytes(uint64(f.SizeBytes))))
	}

	for _, sub := range node.Subdirectories {
		i++
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == total {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		sb.WriteString(fmt.Sprintf("%s%s%s/ (%d files, %s)\n", prefix, connector, sub.Name, sub.TotalFiles, humanize.IBytes(uint64(sub.TotalSize))))
		renderChildren(sb, sub, childPrefix)
	}
}
