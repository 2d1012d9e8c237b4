package backend

import (
	"encoding/json"
	"net/http"
	"time"
)

// defaultHTTPClient is used by registry-listing calls that don't carry an
// InstallContext (e.g. a bare ListVersions probe), adapted from the
// teacher's Manager.Get, which applied a fixed client-wide timeout to every
// registry request.
func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 120 * time.Second}
}

func decodeJSON(resp *http.Response, dst interface{}) error {
	return json.NewDecoder(resp.Body).Decode(dst)
}
