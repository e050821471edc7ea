package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
)

// shortIDLength is the number of hex characters kept by ShortID.
const shortIDLength = 12

func SHA256(input string) string {
	return SHA256Bytes([]byte(input))
}

func SHA256Bytes(input []byte) string {
	hash := sha256.Sum256(input)
	return hex.EncodeToString(hash[:])
}

func SHA256Reader(reader io.Reader) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, reader); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// ShortID returns the first 12 hex characters of the SHA256 of input.
func ShortID(input string) string {
	return SHA256(input)[:shortIDLength]
}

// CompileKey identifies one compile request: the same source text compiled against the
// same ordered references always yields the same key.
func CompileKey(source string, references []string) string {
	hash := sha256.New()
	// A NUL separator cannot appear in a path, so the encoding is unambiguous.
	_, _ = io.WriteString(hash, strings.Join(references, "\x00"))
	_, _ = io.WriteString(hash, "\x00\x00")
	_, _ = io.WriteString(hash, source)
	return hex.EncodeToString(hash.Sum(nil))
}
