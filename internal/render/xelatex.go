package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// texJobName is the job name XeLaTeX uses when the document comes from stdin.
const texJobName = "texput"

// XelatexRenderer typesets a standalone document with XeLaTeX and converts
// the resulting PDF to PNG with ImageMagick.
type XelatexRenderer struct {
	Xelatex  string
	Magick   string
	Template string
	Runner   Runner
}

// NewXelatexRenderer returns a renderer using tmpl. An empty tmpl selects
// HebrewXelatexTemplate when rtl is set and DefaultXelatexTemplate otherwise.
func NewXelatexRenderer(xelatex, magick, tmpl string, rtl bool, runner Runner) *XelatexRenderer {
	if tmpl == "" {
		tmpl = DefaultXelatexTemplate
		if rtl {
			tmpl = HebrewXelatexTemplate
		}
	}
	if xelatex == "" {
		xelatex = "xelatex"
	}
	if magick == "" {
		magick = "magick"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &XelatexRenderer{Xelatex: xelatex, Magick: magick, Template: tmpl, Runner: runner}
}

func (x *XelatexRenderer) Engine() Engine { return Xelatex }

func (x *XelatexRenderer) Source(job Job) (string, error) {
	return Expand(x.Template, bodyText(Xelatex, job), job.Font)
}

func (x *XelatexRenderer) Render(ctx context.Context, job Job) error {
	if job.WorkDir == "" {
		return fmt.Errorf("render %q: xelatex needs a work directory", job.Label)
	}
	doc, err := x.Source(job)
	if err != nil {
		return err
	}
	// xelatex resolves -output-directory against its working directory.
	work, err := filepath.Abs(job.WorkDir)
	if err != nil {
		return fmt.Errorf("render %q: %w", job.Label, err)
	}
	job.WorkDir = work
	if err := os.MkdirAll(job.WorkDir, 0755); err != nil {
		return fmt.Errorf("render %q: %w", job.Label, err)
	}
	defer cleanTexFiles(job.WorkDir)

	_, err = x.Runner.Run(ctx, Command{
		Name:  x.Xelatex,
		Args:  []string{"-output-directory=" + job.WorkDir},
		Stdin: []byte(doc),
		Dir:   job.WorkDir,
	})
	if err != nil {
		return fmt.Errorf("render %q: %w", job.Label, err)
	}

	pdf := filepath.Join(job.WorkDir, texJobName+".pdf")
	if _, err := os.Stat(pdf); err != nil {
		return fmt.Errorf("render %q: xelatex produced no pdf: %w", job.Label, err)
	}

	_, err = x.Runner.Run(ctx, Command{
		Name: x.Magick,
		Args: []string{"-antialias", "-density", "1200", pdf, "-trim", job.Output},
	})
	if err != nil {
		return fmt.Errorf("render %q: %w", job.Label, err)
	}
	return checkOutput(job)
}

func cleanTexFiles(dir string) {
	for _, ext := range []string{".pdf", ".log", ".aux"} {
		_ = os.Remove(filepath.Join(dir, texJobName+ext))
	}
}
