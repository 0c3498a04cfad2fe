package delivery

import (
	"fmt"
	"net/url"
	"strings"
)

// WhatsAppLink builds a wa.me chat link with a prefilled message. Phone is
// the clinic number in international format; non-digit characters are
// stripped. An empty phone returns an empty link.
func WhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}

	link := fmt.Sprintf("https://wa.me/%s", digits)
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}
