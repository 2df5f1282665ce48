package enroll

import (
	"fmt"
	"image"

	"github.com/kozaktomas/fras/internal/faceid"
)

// ImageSource is where an enrollment image comes from: an in-memory upload or
// a file on the server's filesystem.
type ImageSource struct {
	data []byte
	path string
}

// FromBytes wraps encoded image bytes, typically a multipart upload.
func FromBytes(data []byte) ImageSource {
	return ImageSource{data: data}
}

// FromPath refers to an image file readable by this process.
func FromPath(path string) ImageSource {
	return ImageSource{path: path}
}

func (s ImageSource) empty() bool {
	return len(s.data) == 0 && s.path == ""
}

// String describes the source for logs.
func (s ImageSource) String() string {
	if s.path != "" {
		return s.path
	}
	return fmt.Sprintf("upload (%d bytes)", len(s.data))
}

// decode returns the decoded image. The decoded pixels live only as long as
// the caller holds the returned value.
func (s ImageSource) decode() (image.Image, error) {
	if s.path != "" {
		return faceid.DecodeFile(s.path)
	}
	return faceid.Decode(s.data)
}
