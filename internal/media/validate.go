// Package media validates files picked by the user before they are uploaded.
package media

import (
	"bytes"
	"image"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/samber/lo"
	_ "golang.org/x/image/webp"

	"agentconsole/internal/apiclient"
	"agentconsole/internal/domain"
)

// MaxUploadBytes caps any single picked file.
const MaxUploadBytes = 50 << 20

// ImageInfo is what DecodeConfig learned about an image.
type ImageInfo struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

var (
	audioExtensions    = []string{".mp3", ".wav", ".m4a", ".ogg", ".webm"}
	documentExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".png", ".jpg", ".jpeg", ".gif"}
)

// CheckImage sniffs the image header. The declared name and type are ignored.
func CheckImage(field string, file apiclient.File) (ImageInfo, error) {
	if err := checkSize(field, file); err != nil {
		return ImageInfo{}, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(file.Data))
	if err != nil {
		return ImageInfo{}, domain.Invalid(field, "%s is not a supported image (png, jpeg, gif, webp)", displayName(file))
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// CheckAudio accepts audio/* content types or a known audio extension.
func CheckAudio(field string, file apiclient.File) error {
	if err := checkSize(field, file); err != nil {
		return err
	}
	if strings.HasPrefix(strings.ToLower(file.ContentType), "audio/") {
		return nil
	}
	if hasExtension(file.Name, audioExtensions) {
		return nil
	}
	return domain.Invalid(field, "%s is not a supported audio file (mp3, wav, m4a, ogg, webm)", displayName(file))
}

// CheckCSV accepts only .csv files.
func CheckCSV(field string, file apiclient.File) error {
	if err := checkSize(field, file); err != nil {
		return err
	}
	if !hasExtension(file.Name, []string{".csv"}) {
		return domain.Invalid(field, "please select a CSV file")
	}
	return nil
}

// CheckDocument accepts the source formats used for slide generation.
func CheckDocument(field string, file apiclient.File) error {
	if err := checkSize(field, file); err != nil {
		return err
	}
	if !hasExtension(file.Name, documentExtensions) {
		return domain.Invalid(field, "%s is not a supported document (pdf, doc, docx, txt, png, jpg, gif)", displayName(file))
	}
	return nil
}

func checkSize(field string, file apiclient.File) error {
	if len(file.Data) == 0 {
		return domain.Invalid(field, "%s is empty", displayName(file))
	}
	if len(file.Data) > MaxUploadBytes {
		return domain.Invalid(field, "%s exceeds the %d MB upload limit", displayName(file), MaxUploadBytes>>20)
	}
	return nil
}

func hasExtension(name string, allowed []string) bool {
	return lo.Contains(allowed, strings.ToLower(filepath.Ext(name)))
}

func displayName(file apiclient.File) string {
	if file.Name == "" {
		return "file"
	}
	return file.Name
}
