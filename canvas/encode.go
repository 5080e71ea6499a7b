package canvas

import (
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

// Format names an output image encoding.
type Format string

const (
	FormatPNG    Format = "png"
	FormatJPEG   Format = "jpeg"
	FormatPPM    Format = "ppm"
	FormatRaster Format = "raster"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// ParseFormat accepts a format name or common file extension, ignoring case.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "ppm":
		return FormatPPM, nil
	case "raster":
		return FormatRaster, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Extension returns the conventional file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatRaster:
		return "rst"
	}
	return string(f)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatPPM:
		return "image/x-portable-pixmap"
	}
	return "application/octet-stream"
}

// Encode writes c to w in format f.
func (c *Canvas) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatPNG:
		if err := png.Encode(w, c.ToImage()); err != nil {
			return fmt.Errorf("while encoding png: %w", err)
		}
		return nil
	case FormatJPEG:
		if err := jpeg.Encode(w, c.ToImage(), &jpeg.Options{Quality: 90}); err != nil {
			return fmt.Errorf("while encoding jpeg: %w", err)
		}
		return nil
	case FormatPPM:
		return c.WritePPM(w)
	case FormatRaster:
		return WriteRaster(c, w)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}
