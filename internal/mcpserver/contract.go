package mcpserver

import (
	"strings"

	"github.com/starford/scribe/internal/format"
)

// FormatContract tells LLM consumers how the notes document behaves and
// which formatting actions format_document accepts.
var FormatContract = `# Scribe Document Contract

Scribe keeps ONE Markdown document per profile directory (notes.md).

## Saving

- Edits are held in memory and written about two seconds after the last change.
- A failed write is retried up to three times; call flush_document to write now.
- Identical content is not a change and is never written.

## Editing

- replace_document swaps the whole text. Pass if_match (the checksum from
  read_document or get_status) to refuse the write when the text moved on.
- append_document adds text on its own line at the end.
- format_document applies one action to a byte range [start, end).
  An empty range inserts a placeholder and selects it.

## Actions

` + "- `" + strings.Join(format.Actions, "`\n- `") + "`" + `

link and image require a url.

## Tasks

Use ` + "`- [ ] task`" + ` for open items and ` + "`- [x] task`" + ` for done ones. get_status
reports the counts in its outline.
`
