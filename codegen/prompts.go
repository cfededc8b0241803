package codegen

import (
	"strings"
	"text/template"

	"github.com/BaSui01/patternflow/types"
)

// Step is one generation stage for a pattern: a prompt template plus the
// relative output path its content is written to.
type Step struct {
	Name       string
	OutputFile string
	System     string
	tmpl       *template.Template
}

// Render produces the user prompt for a pattern.
func (s *Step) Render(p types.Pattern) (string, error) {
	var sb strings.Builder
	if err := s.tmpl.Execute(&sb, p); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func mustStep(name, outputFile, system, prompt string) Step {
	return Step{
		Name:       name,
		OutputFile: outputFile,
		System:     system,
		tmpl:       template.Must(template.New(name).Parse(prompt)),
	}
}

const writerSystem = "You are a senior engineer writing documentation for a catalog " +
	"of AI application design patterns. Write precise, practical prose. " +
	"Output raw markdown only, no preamble."

// DefaultSteps returns the standard per-pattern generation sequence:
// README essay, then user story, then a runnable example sketch.
// Later steps may assume earlier outputs exist on disk.
func DefaultSteps() []Step {
	return []Step{
		mustStep("readme", "README.md", writerSystem,
			`Write the README for the design pattern "{{.Title}}" (id: {{.ID}}).

Summary: {{.Summary}}
Maturity: {{.Maturity}}
{{if .Tags}}Tags: {{range $i, $t := .Tags}}{{if $i}}, {{end}}{{$t}}{{end}}{{end}}

Sections: Problem, Solution, When to use, When not to use, Trade-offs.
Keep it under 800 words.`),
		mustStep("user-story", "docs/user-story.md", writerSystem,
			`Write a short user story showing a team applying the pattern "{{.Title}}".
Ground it in a concrete product scenario. Summary of the pattern: {{.Summary}}
Under 400 words.`),
		mustStep("example", "docs/example.md", writerSystem,
			`Write a minimal, annotated code walkthrough for the pattern "{{.Title}}"
(id: {{.ID}}). Summary: {{.Summary}}
Show the core mechanism in short code blocks with one-line explanations between them.`),
	}
}
