// Package codepage provides the single encoding helper the BIFF5
// worksheet builder needs: a lossy, length-capped Windows-1252 encode
// for LABEL cell text.
package codepage

import "golang.org/x/text/encoding/charmap"

// EncodeCP1252 encodes s as Windows-1252, substituting '?' for any
// character the code page cannot represent, and truncates the result to
// at most maxLen bytes.
func EncodeCP1252(s string, maxLen int) []byte {
	enc := charmap.Windows1252.NewEncoder()
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, err := enc.Bytes([]byte(string(r)))
		if err != nil || len(b) == 0 {
			b = []byte{'?'}
		}
		out = append(out, b...)
		if len(out) >= maxLen {
			break
		}
	}
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}
