package signup

import "fmt"

// Logo uploads are rejected before any network call is made, and the
// selection is cleared on failure.

const maxLogoSizeBytes = 2 << 20

var allowedLogoMIMETypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/svg+xml": true,
	"image/webp":    true,
}

type LogoUpload struct {
	FileName string
	Size     int64
	MIMEType string
}

func ValidateLogo(logo LogoUpload) error {
	if !allowedLogoMIMETypes[logo.MIMEType] {
		return NewInvalidLogoError(fmt.Sprintf("Logo must be a PNG, JPEG, SVG or WebP image, got %q", logo.MIMEType))
	}
	if logo.Size > maxLogoSizeBytes {
		return NewInvalidLogoError("Logo must be 2MB or smaller")
	}
	return nil
}

// SetLogo validates and stores the selection. On rejection the previous
// selection is cleared, matching the form behavior of resetting the file
// input.
func (s *State) SetLogo(logo LogoUpload) error {
	if err := ValidateLogo(logo); err != nil {
		s.Logo = nil
		return err
	}

	s.Logo = &logo
	return nil
}
