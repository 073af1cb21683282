package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BlurKind is the subtype attached to a blur classification.
type BlurKind int

const (
	BlurNone BlurKind = iota
	BlurMotion
	BlurOutOfFocus
	BlurGeneral
)

var blurKindNames = map[BlurKind]string{
	BlurNone:       "none",
	BlurMotion:     "motion",
	BlurOutOfFocus: "outOfFocus",
	BlurGeneral:    "general",
}

func (k BlurKind) String() string {
	if name, ok := blurKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("BlurKind(%d)", int(k))
}

// MarshalJSON encodes the kind by name.
func (k BlurKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name.
func (k *BlurKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for kind, n := range blurKindNames {
		if n == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown blur kind: %q", name)
}

// ChannelStatistics holds the population mean and standard deviation of one channel.
type ChannelStatistics struct {
	Mean   float64
	StdDev float64
}

// Classification is the Blur Analyzer verdict for one request.
type Classification struct {
	IsBlurry bool     `json:"isBlurry"`
	Kind     BlurKind `json:"blurKind"`
	Score    float64  `json:"score"`
	// Degraded is set when statistics could not be computed and the
	// classification fell back to not blurry.
	Degraded bool `json:"degraded,omitempty"`
}

// NotBlurry is the classification used for sharp images and for the analysis fallback.
func NotBlurry() Classification {
	return Classification{IsBlurry: false, Kind: BlurNone}
}

// ResizeStep is one target size of a progressive resize plan.
type ResizeStep struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s ResizeStep) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// QualityTier selects the encoder quality preset.
type QualityTier int

const (
	QualityLow QualityTier = iota
	QualityMedium
	QualityHigh
)

func (q QualityTier) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	default:
		return fmt.Sprintf("QualityTier(%d)", int(q))
	}
}

// ParseQualityTier parses low, medium or high (case-insensitive).
func ParseQualityTier(s string) (QualityTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return QualityLow, nil
	case "medium":
		return QualityMedium, nil
	case "high":
		return QualityHigh, nil
	default:
		return 0, Invalid("parse quality tier", fmt.Errorf("unknown quality tier %q", s))
	}
}

// Format is an output container.
type Format int

const (
	FormatJPEG Format = iota
	FormatPNG
	FormatWebP
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatWebP:
		return "webp"
	default:
		return "jpeg"
	}
}

// MimeType returns the media type of the encoded container.
func (f Format) MimeType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// ParseFormat never fails: unknown or empty names select JPEG and report fellBack.
func ParseFormat(s string) (f Format, fellBack bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return FormatJPEG, false
	case "png":
		return FormatPNG, false
	case "webp":
		return FormatWebP, false
	default:
		return FormatJPEG, true
	}
}

// Request is the per-call parameter set.
type Request struct {
	ScaleFactor float64
	Quality     QualityTier
	Format      Format
	// FormatFallback records that the caller asked for an unsupported format.
	FormatFallback bool
}

// Result is what a successful pipeline invocation returns.
type Result struct {
	ImageBytes     []byte             `json:"imageBytes"`
	MimeType       string             `json:"mimeType"`
	IsBlurry       bool               `json:"isBlurry"`
	BlurKind       BlurKind           `json:"blurKind"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	Steps          []ResizeStep       `json:"steps"`
	Quality        int                `json:"quality"`
	FormatFallback bool               `json:"formatFallback,omitempty"`
	Diagnostics    map[string]float64 `json:"diagnostics,omitempty"`
}
