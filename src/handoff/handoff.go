// Package handoff renders the note left behind when an upstream merge stops
// on conflicts, so a person or an agent can finish the sync.
package handoff

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/vidaislive/forksync/src/git"
)

// Input is everything the handoff note describes.
type Input struct {
	Project   string // fork repository name, optional
	Branch    string // sync branch holding the conflicted merge
	Base      string // branch the sync branch was created from
	SourceRef string // upstream tag being merged
	ForkTag   string // tag to create once resolved, "" when tagging is disabled
	Origin    string // remote to push to
	Files     []string
	Hunks     map[string]int // conflict hunks per file, optional
	Commits   []git.Commit
	Created   time.Time
}

var noteTmpl = template.Must(template.New("handoff").Funcs(sprig.TxtFuncMap()).Parse(noteText))

const noteText = `# Upstream sync handoff: {{ .SourceRef }}

{{ if .Project }}Repository: {{ .Project }}
{{ end -}}
Branch:     {{ .Branch }}
Base:       {{ .Base }}
Source ref: {{ .SourceRef }}
{{ if .ForkTag }}Fork tag:   {{ .ForkTag }}
{{ end -}}
Generated:  {{ .Created | date "2006-01-02 15:04:05 MST" }}

The merge of {{ .SourceRef | quote }} into {{ .Branch | quote }} stopped with
{{ len .Files }} unresolved file(s). Nothing was committed, tagged or pushed.

## Unresolved files
{{ range .Files }}
- {{ . }}{{ with index $.Hunks . }} ({{ . }} conflict hunk{{ if gt . 1 }}s{{ end }}){{ end }}
{{- else }}
- (git reported a failure but no conflicted paths; inspect git status)
{{- end }}
{{ with .Groups }}
## Incoming upstream changes
{{ range . }}
### {{ .Title }}
{{ range .Commits }}
- {{ .Hash }} {{ if .Scope }}**{{ .Scope }}:** {{ end }}{{ .Summary }}{{ if .Breaking }} (breaking){{ end }}
{{- end }}
{{ end }}
{{- end }}
## Next steps

1. Resolve the conflicts above, keeping fork-specific changes.
2. Stage and commit the merge:

       git status
{{- range .Files }}
       git add {{ . | squote }}
{{- end }}
       git commit --no-edit
{{ if .ForkTag }}
3. Tag the fork release:

       git tag -a {{ .ForkTag }} -m {{ printf "fork release %s" .SourceRef | squote }}
{{ end }}
{{ if .ForkTag }}4{{ else }}3{{ end }}. Push:

       git push {{ .Origin }} {{ .Branch }}
{{- if .ForkTag }}
       git push {{ .Origin }} {{ .ForkTag }}
{{- end }}
`

// noteData is Input plus the commits grouped for rendering.
type noteData struct {
	Input
	Groups []Group
}

// Render returns the handoff note as markdown.
func Render(in Input) (string, error) {
	if in.Created.IsZero() {
		in.Created = time.Now()
	}
	if in.Origin == "" {
		in.Origin = "origin"
	}

	var buf bytes.Buffer
	if err := noteTmpl.Execute(&buf, noteData{Input: in, Groups: GroupCommits(in.Commits)}); err != nil {
		return "", fmt.Errorf("rendering handoff: %w", err)
	}
	return buf.String(), nil
}

// Write renders the note to path, creating parent directories and
// replacing any previous note.
func Write(path string, in Input) error {
	body, err := Render(in)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating handoff dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing handoff: %w", err)
	}
	return nil
}
