package services

import (
	"io"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
)

// OpenImage enforces the shared upload rules (non-empty, at most 5 MiB,
// image content) and returns a reader positioned at the start of the file
// along with the sniffed content type.
func OpenImage(r io.Reader, size int64) (io.Reader, string, error) {
	if size <= 0 {
		return nil, "", domain.ValidationError{Field: "file", Msg: "file is empty"}
	}
	if size > MaxProofSize {
		return nil, "", domain.ValidationError{Field: "file", Msg: "file exceeds 5 MiB"}
	}
	return sniffImage(r)
}
