package httpcache

import (
	"bufio"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httputil"
)

const responsePrefix = "---HTTP-RESPONSE---\n"

// Serialize dumps resp, body included, in HTTP/1.x wire format.
// resp.Body is left readable for the caller.
func Serialize(resp *http.Response) ([]byte, error) {
	b, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return nil, err
	}

	return append([]byte(responsePrefix), b...), nil
}

// Deserialize parses bytes produced by Serialize.
func Deserialize(b []byte, req *http.Request) (*http.Response, error) {
	if !bytes.HasPrefix(b, []byte(responsePrefix)) {
		return nil, fmt.Errorf("invalid prefix: expected %q", responsePrefix)
	}

	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(b[len(responsePrefix):])), req)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize response: %w", err)
	}

	return resp, nil
}
