// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes photos uploaded through the admin: it
// honours the camera orientation, bounds the size and strips metadata by
// re-encoding.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // registers the WebP decoder
)

const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

const (
	DefaultMaxDimension = 2400
	DefaultQuality      = 85
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// output describes how an accepted input type is written back.
type output struct {
	mime   string
	ext    string
	format imaging.Format
}

// TIFF is deliberately absent (CVE-2023-36308 in disintegration/imaging).
// WebP is decoded but stored as JPEG since there is no pure Go encoder.
var outputs = map[string]output{
	MimeTypeJPEG: {MimeTypeJPEG, "jpg", imaging.JPEG},
	MimeTypePNG:  {MimeTypePNG, "png", imaging.PNG},
	MimeTypeGIF:  {MimeTypeGIF, "gif", imaging.GIF},
	MimeTypeWebP: {MimeTypeJPEG, "jpg", imaging.JPEG},
}

// orientations maps EXIF orientation values to the transform that makes
// the image upright.
var orientations = map[int]func(image.Image) *image.NRGBA{
	2: imaging.FlipH,
	3: imaging.Rotate180,
	4: imaging.FlipV,
	5: imaging.Transpose,
	6: imaging.Rotate270,
	7: imaging.Transverse,
	8: imaging.Rotate90,
}

// Result is a processed image ready for the bucket.
type Result struct {
	Data     []byte
	Ext      string
	MimeType string
	Width    int
	Height   int
}

type Processor struct {
	maxDimension int
	quality      int
}

// NewProcessor returns a processor bounding images to maxDimension on
// either side. Out of range arguments use the defaults.
func NewProcessor(maxDimension, quality int) *Processor {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Processor{maxDimension: maxDimension, quality: quality}
}

func (p *Processor) Process(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	out, ok := outputs[DetectMimeType(data)]
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = upright(img, orientation(data))
	if b := img.Bounds(); b.Dx() > p.maxDimension || b.Dy() > p.maxDimension {
		img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, out.format, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return &Result{
		Data:     buf.Bytes(),
		Ext:      out.ext,
		MimeType: out.mime,
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
	}, nil
}

// IsImage reports whether uploads of mimeType are accepted.
func IsImage(mimeType string) bool {
	_, ok := outputs[mimeType]
	return ok
}

// DetectMimeType sniffs data and returns the bare media type.
func DetectMimeType(data []byte) string {
	mt, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return mt
}

// orientation returns the EXIF orientation of data, 1 when it has none.
func orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

func upright(img image.Image, o int) image.Image {
	if fix, ok := orientations[o]; ok {
		return fix(img)
	}
	return img
}
