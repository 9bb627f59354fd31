package render

import (
	"context"
	"fmt"
	"os"
)

// PangoRenderer draws Pango markup with ImageMagick. ImageMagick does not
// antialias Pango text, so the image is rendered at 4x and scaled down.
type PangoRenderer struct {
	Magick   string
	Template string
	Runner   Runner
}

// NewPangoRenderer returns a renderer using tmpl, or DefaultPangoTemplate
// when tmpl is empty.
func NewPangoRenderer(magick, tmpl string, runner Runner) *PangoRenderer {
	if tmpl == "" {
		tmpl = DefaultPangoTemplate
	}
	if magick == "" {
		magick = "magick"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PangoRenderer{Magick: magick, Template: tmpl, Runner: runner}
}

func (p *PangoRenderer) Engine() Engine { return Pango }

func (p *PangoRenderer) Source(job Job) (string, error) {
	return Expand(p.Template, bodyText(Pango, job), job.Font)
}

func (p *PangoRenderer) Render(ctx context.Context, job Job) error {
	markup, err := p.Source(job)
	if err != nil {
		return err
	}

	args := []string{
		"-background", "white", "-density", "600",
		markup,
		"-transparent", "white", "-antialias", "-resize", "25%", "-trim",
	}
	if job.Flip {
		args = append(args, "-flip")
	}
	if job.Flop {
		args = append(args, "-flop")
	}
	args = append(args, job.Output)

	if _, err := p.Runner.Run(ctx, Command{Name: p.Magick, Args: args}); err != nil {
		return fmt.Errorf("render %q: %w", job.Label, err)
	}
	return checkOutput(job)
}

func checkOutput(job Job) error {
	info, err := os.Stat(job.Output)
	if err != nil {
		return fmt.Errorf("render %q: no image produced: %w", job.Label, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("render %q: empty image %s", job.Label, job.Output)
	}
	return nil
}
