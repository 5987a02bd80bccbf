package validation

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "github.com/anime-shed/recycling-guide-go/internal/errors"
)

// DataURLImagePrefix marks a data URL carrying an image MIME type
const DataURLImagePrefix = "data:image/"

// User-facing boundary messages
const (
	MsgImageRequired      = "image data is required"
	MsgInvalidImageFormat = "invalid image format"
)

// ValidateImagePayload enforces the inbound boundary precondition: a non-empty
// data URL announcing an image MIME type. Content is not decoded here.
func ValidateImagePayload(payload string) error {
	if strings.TrimSpace(payload) == "" {
		return apperrors.NewValidationError(MsgImageRequired, nil)
	}
	if !strings.HasPrefix(payload, DataURLImagePrefix) {
		return apperrors.NewValidationError(MsgInvalidImageFormat, nil)
	}
	return nil
}

// DecodedImage is the binary content of an image data URL
type DecodedImage struct {
	DeclaredMIME string
	DetectedMIME string
	Data         []byte
}

// DecodeDataURL parses data:<mime>;base64,<data> and sniffs the decoded bytes.
// It fails with InvalidInput unless both the declared and detected types are images.
func DecodeDataURL(payload string) (*DecodedImage, error) {
	if !strings.HasPrefix(payload, DataURLImagePrefix) {
		return nil, apperrors.NewInvalidInputError("payload is not an image data URL", nil)
	}

	header, encoded, found := strings.Cut(payload[len("data:"):], ",")
	if !found {
		return nil, apperrors.NewInvalidInputError("data URL has no payload section", nil)
	}

	params := strings.Split(header, ";")
	declared := strings.ToLower(strings.TrimSpace(params[0]))
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if !isBase64 {
		return nil, apperrors.NewInvalidInputError("data URL must be base64 encoded", nil)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("data URL payload is not valid base64", err)
	}
	if len(data) == 0 {
		return nil, apperrors.NewInvalidInputError("data URL payload is empty", nil)
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, apperrors.NewInvalidInputError(
			fmt.Sprintf("payload content is %s, not an image", detected.String()), nil)
	}

	return &DecodedImage{
		DeclaredMIME: declared,
		DetectedMIME: detected.String(),
		Data:         data,
	}, nil
}

// EncodeDataURL builds an image data URL, taking the MIME type from the content
func EncodeDataURL(data []byte) (string, error) {
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", apperrors.NewValidationError(MsgInvalidImageFormat,
			fmt.Errorf("detected %s", detected.String()))
	}
	return "data:" + detected.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
