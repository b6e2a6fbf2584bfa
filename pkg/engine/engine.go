// Package engine provides the native drawing.Engine implementation.
//
// [Native] detects the input format from its content: ASCII DXF documents
// (package dxf) and YAML drawing documents (package yamldoc). Anything else
// fails with [ErrUnknownFormat].
//
//	eng := engine.New(logger)
//	model, err := eng.Parse(ctx, data)
package engine

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cadlayout/pkg/drawing"
	"github.com/matzehuels/cadlayout/pkg/drawing/dxf"
	"github.com/matzehuels/cadlayout/pkg/drawing/yamldoc"
)

// ErrUnknownFormat is returned when no decoder recognizes the input.
var ErrUnknownFormat = errors.New("unrecognized drawing format")

// Format names a supported input format.
type Format string

const (
	FormatDXF  Format = "dxf"
	FormatYAML Format = "yaml"
)

// Detect returns the format of data, or "" if none matches.
func Detect(data []byte) Format {
	switch {
	case dxf.Sniff(data):
		return FormatDXF
	case yamldoc.Sniff(data):
		return FormatYAML
	}
	return ""
}

// Native parses DXF and YAML drawings.
type Native struct {
	drawing.Base
	Logger *log.Logger
}

// New returns a native engine. A nil logger discards output.
func New(logger *log.Logger) *Native {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Native{Logger: logger}
}

// Parse decodes data in whichever format it is in.
func (n *Native) Parse(ctx context.Context, data []byte) (*drawing.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch Detect(data) {
	case FormatDXF:
		res, err := dxf.Decode("", data)
		if err != nil {
			return nil, err
		}
		for typ, count := range res.Skipped {
			n.Logger.Debug("skipped unsupported entities", "type", typ, "count", count)
		}
		return res.Model, nil
	case FormatYAML:
		return yamldoc.Decode(data)
	}
	return nil, ErrUnknownFormat
}

var _ drawing.Engine = (*Native)(nil)
