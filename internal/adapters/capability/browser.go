package capability

import (
	"github.com/pkg/browser"

	"fan-chat-assist/internal/domain"
)

// SystemBrowser открывает ссылки в браузере по умолчанию.
type SystemBrowser struct{}

var _ domain.BrowserOpener = SystemBrowser{}

// Open открывает ссылку на чат.
func (SystemBrowser) Open(url string) error {
	return browser.OpenURL(url)
}
