// Package index reads story index documents and normalizes their entries
// into leaf records for the hierarchy builder.
package index

import (
	"maps"

	"github.com/Aman-CERP/storytree/pkg/storyhash"
)

// DocsPageName is the entry name that marks a standalone documentation page.
const DocsPageName = "Page"

// Entry types used by version 4 documents.
const (
	TypeStory = "story"
	TypeDocs  = "docs"
)

// Entry is one story as listed in an index document.
type Entry struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Name       string         `json:"name"`
	ImportPath string         `json:"importPath"`
	Type       string         `json:"type,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Args       map[string]any `json:"args,omitempty"`
	ArgTypes   map[string]any `json:"argTypes,omitempty"`
}

// Index is an ordered list of entries.
type Index struct {
	Version int
	Entries []Entry
}

// Parameter keys interpreted by Normalize. Everything else lands in Extra.
const (
	paramDocsOnly = "docsOnly"
	paramViewMode = "viewMode"
	paramFileName = "fileName"
)

// Normalize turns entries into leaf records, in entry order. A "Page" entry
// that is alone under its title is marked docs-only, as are v4 docs entries
// and entries that already say so in their parameters.
func Normalize(idx Index) []storyhash.LeafRecord {
	titles := make(map[string]int, len(idx.Entries))
	for _, e := range idx.Entries {
		titles[e.Title]++
	}

	records := make([]storyhash.LeafRecord, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		params := normalizeParameters(e)
		if e.Name == DocsPageName && titles[e.Title] == 1 {
			params.DocsOnly = true
		}
		records = append(records, storyhash.LeafRecord{
			ID:         e.ID,
			Name:       e.Name,
			Kind:       e.Title,
			Parameters: params,
			Args:       maps.Clone(e.Args),
			ArgTypes:   maps.Clone(e.ArgTypes),
		})
	}
	return records
}

func normalizeParameters(e Entry) storyhash.Parameters {
	params := storyhash.Parameters{
		FileName: e.ImportPath,
		DocsOnly: e.Type == TypeDocs,
	}

	for k, v := range e.Parameters {
		switch k {
		case paramDocsOnly:
			if b, ok := v.(bool); ok && b {
				params.DocsOnly = true
			}
		case paramViewMode:
			if s, ok := v.(string); ok {
				params.ViewMode = s
			}
		case paramFileName:
			// importPath wins; older documents only carry fileName.
			if s, ok := v.(string); ok && params.FileName == "" {
				params.FileName = s
			}
		default:
			if params.Extra == nil {
				params.Extra = make(map[string]any)
			}
			params.Extra[k] = v
		}
	}
	return params
}
