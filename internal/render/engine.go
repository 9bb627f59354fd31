// Package render turns text into PNG files by driving ImageMagick, Pango
// and XeLaTeX as external processes.
package render

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pfassina/rendercards/internal/escape"
)

// Engine names a rendering pipeline.
type Engine string

const (
	Pango   Engine = "pango"
	Xelatex Engine = "xelatex"
)

// ParseEngine accepts engine names case-insensitively ("Pango", "XeLaTeX").
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pango":
		return Pango, nil
	case "xelatex":
		return Xelatex, nil
	}
	return "", fmt.Errorf("unknown engine %q (want pango or xelatex)", s)
}

// Dialect is the escaping dialect of the engine's template language.
func (e Engine) Dialect() escape.Dialect {
	if e == Xelatex {
		return escape.Typesetting
	}
	return escape.Markup
}

// Job describes one image to produce.
type Job struct {
	Label      string // for logs and errors
	Text       string
	PreEscaped bool // Text is already in the engine's dialect
	Font       string
	Flip       bool
	Flop       bool
	Output     string // PNG path
	WorkDir    string // scratch directory private to this job
}

// Renderer produces a PNG for a job.
type Renderer interface {
	Engine() Engine
	// Source returns the fully expanded template for the job, which is
	// exactly what the external tool receives.
	Source(job Job) (string, error)
	Render(ctx context.Context, job Job) error
}

// Key identifies the image a job will produce, for caching. Jobs with the
// same key produce the same image.
func Key(r Renderer, job Job) (string, error) {
	src, err := r.Source(job)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%t\x00%t\x00", r.Engine(), job.Flip, job.Flop)
	h.Write([]byte(src))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func bodyText(e Engine, job Job) string {
	if job.PreEscaped {
		return job.Text
	}
	return escape.Escape(job.Text, e.Dialect())
}
