package engine

// WelcomeTemplate is written to a profile that has no notes file yet.
const WelcomeTemplate = `# Notes

Welcome to your notes. Everything you type here is saved automatically.

## Formatting

- **Bold** with ` + "`**text**`" + `, *italic* with ` + "`*text*`" + `
- ` + "`Inline code`" + ` with backticks
- [Links](https://example.com) with ` + "`[text](url)`" + `

## Tasks

- [ ] Try the preview mode
- [x] Open your notes
`
