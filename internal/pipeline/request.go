package pipeline

import (
	"strings"

	"progressive-upscaler/internal/core"
)

// NewRequest parses caller-supplied strings. An empty quality or format selects the
// configured default; an unknown quality is invalid input; an unknown format falls
// back to jpeg and is flagged on the request.
func (u *Upscaler) NewRequest(scale float64, quality, format string) (core.Request, error) {
	req := core.Request{
		ScaleFactor: scale,
		Quality:     u.defaultQuality,
		Format:      u.defaultFormat,
	}

	if strings.TrimSpace(quality) != "" {
		q, err := core.ParseQualityTier(quality)
		if err != nil {
			return core.Request{}, err
		}
		req.Quality = q
	}

	if strings.TrimSpace(format) != "" {
		req.Format, req.FormatFallback = core.ParseFormat(format)
	}

	if err := validateScale(scale); err != nil {
		return core.Request{}, core.Invalid("new request", err)
	}
	return req, nil
}
