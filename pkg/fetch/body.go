package fetch

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// drainLimit caps how much of an error response body is discarded before
// closing, so the connection can be reused.
const drainLimit = 1 << 20

// readText reads the whole body and decodes it to UTF-8.
func readText(resp *http.Response) (string, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return decodeText(raw, resp.Header.Get("Content-Type"))
}

// decodeText uses the charset declared in contentType when there is one.
// Otherwise a body that is valid UTF-8 as a whole is kept as is, and only
// bodies that are not fall back to sniffing (BOM, HTML meta tags).
func decodeText(raw []byte, contentType string) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	if label := declaredCharset(contentType); label != "" {
		if enc, _ := charset.Lookup(label); enc != nil {
			decoded, err := enc.NewDecoder().Bytes(raw)
			if err != nil {
				return "", fmt.Errorf("decode body as %s: %w", label, err)
			}
			return strings.ToValidUTF8(string(decoded), "\uFFFD"), nil
		}
	}

	if utf8.Valid(raw) {
		return string(bytes.TrimPrefix(raw, utf8BOM)), nil
	}

	enc, name, _ := charset.DetermineEncoding(raw, contentType)
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode body as %s: %w", name, err)
	}

	return strings.ToValidUTF8(string(decoded), "\uFFFD"), nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

// declaredCharset returns the charset parameter of a Content-Type header.
func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, drainLimit))
	_ = body.Close()
}
