package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const rsvgConvert = "rsvg-convert"

// ErrNoConverter is returned by [ToPDF] and [ToPNG] when rsvg-convert is
// not on PATH.
var ErrNoConverter = errors.New("pdf/png output needs rsvg-convert from librsvg (brew install librsvg, apt install librsvg2-bin)")

// Available reports whether rsvg-convert is on PATH.
func Available() bool {
	_, err := exec.LookPath(rsvgConvert)
	return err == nil
}

// ToPDF converts an SVG document to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG converts an SVG document to PNG at scale (1 when scale <= 0).
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convert(ctx context.Context, svg []byte, format string, args ...string) ([]byte, error) {
	if !Available() {
		return nil, ErrNoConverter
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, rsvgConvert, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s to %s: %w: %s", rsvgConvert, format, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
