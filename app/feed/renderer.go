package feed

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/text/unicode/norm"
)

// Renderer converts entry HTML to markdown, keeping links and dropping images.
type Renderer struct {
	converter *md.Converter
}

func NewRenderer() *Renderer {
	converter := md.NewConverter("", true, nil)
	converter.Remove("img", "picture", "svg", "script", "style", "iframe")

	return &Renderer{converter: converter}
}

func (r *Renderer) Run(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	markdown, err := r.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}

	return norm.NFC.String(strings.TrimSpace(markdown)), nil
}
