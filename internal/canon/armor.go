package canon

import (
	"encoding/base64"
	"strings"

	"github.com/relayforge/rsaforge/internal/rsaerr"
)

// armorLineWidth is the encoded-character line width of the PEM-style
// armor.
const armorLineWidth = 64

// Armor base64-encodes data with the MIME alphabet (no internal newlines
// from the codec itself) and wraps it in a proprietary BEGIN/END frame,
// re-wrapping the encoded text to armorLineWidth columns. This is the
// module's own armor format, not RFC 1421, so encoding/pem (which
// enforces its own framing) does not fit.
func Armor(data []byte, label string) string {
	encoded := base64.StdEncoding.EncodeToString(data)

	var b strings.Builder
	b.WriteString("-----BEGIN ")
	b.WriteString(label)
	b.WriteString("-----\n")
	for i := 0; i < len(encoded); i += armorLineWidth {
		end := i + armorLineWidth
		if end > len(encoded) {
			end = len(encoded)
		}
		b.WriteString(encoded[i:end])
		b.WriteByte('\n')
	}
	b.WriteString("-----END ")
	b.WriteString(label)
	b.WriteString("-----\n")
	return b.String()
}

// Dearmor strips the proprietary BEGIN/END framing and decodes the base64
// body. It skips the opening line (through the first '\n'), strips all
// remaining newlines, and stops at the first '-' of the footer.
func Dearmor(armored string) ([]byte, error) {
	nl := strings.IndexByte(armored, '\n')
	if nl < 0 {
		return nil, rsaerr.New(rsaerr.ValueError, "armored input has no header line")
	}
	body := armored[nl+1:]

	footer := strings.IndexByte(body, '-')
	if footer >= 0 {
		body = body[:footer]
	}
	body = strings.ReplaceAll(body, "\n", "")
	body = strings.ReplaceAll(body, "\r", "")

	if len(body)%4 != 0 {
		return nil, rsaerr.New(rsaerr.ValueError, "armored body length not a multiple of 4")
	}
	if err := validateAlphabet(body); err != nil {
		return nil, err
	}

	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, rsaerr.Wrap(rsaerr.ValueError, "invalid base64 body", err)
	}
	return decoded, nil
}

const b64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// validateAlphabet rejects any character outside the MIME alphabet except
// trailing '=' pad positions.
func validateAlphabet(s string) error {
	padStart := len(s)
	for padStart > 0 && s[padStart-1] == '=' {
		padStart--
	}
	if len(s)-padStart > 2 {
		return rsaerr.New(rsaerr.ValueError, "too much base64 padding")
	}
	for i := 0; i < padStart; i++ {
		if strings.IndexByte(b64Alphabet, s[i]) < 0 {
			return rsaerr.New(rsaerr.ValueError, "character outside base64 alphabet")
		}
	}
	return nil
}
