package updatecheck

import "errors"

var (
	// ErrRequestFailed marks a transport-level failure, the manifest
	// request never produced a server response.
	ErrRequestFailed = errors.New("update check request failed")
	// ErrBadResponse marks a non-200 status or an unparsable manifest body.
	ErrBadResponse = errors.New("invalid update check response")
	// ErrInsecureURL marks a manifest entry announcing a download URL
	// that is not https.
	ErrInsecureURL = errors.New("insecure update URL")
)
