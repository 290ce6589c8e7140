package capability

import (
	"github.com/atotto/clipboard"

	"fan-chat-assist/internal/domain"
)

// SystemClipboard реализует domain.Clipboard через системный буфер обмена.
type SystemClipboard struct{}

var _ domain.Clipboard = SystemClipboard{}

// Copy помещает текст в буфер обмена оператора.
func (SystemClipboard) Copy(text string) error {
	return clipboard.WriteAll(text)
}
