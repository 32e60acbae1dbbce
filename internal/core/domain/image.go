package domain

import "errors"

const (
	MaxImageSize     = 5 << 20
	MaxImagesPerCall = 5
)

var (
	ErrNoImages         = errors.New("no image file provided")
	ErrTooManyImages    = errors.New("too many images")
	ErrImageTooLarge    = errors.New("image exceeds the 5MB limit")
	ErrUnsupportedImage = errors.New("only png, jpeg, webp and gif images are allowed")
)

// AllowedImageTypes maps accepted MIME types to the extension used for storage.
var AllowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// StoredImage describes an image after it has been written to storage.
type StoredImage struct {
	Key          string
	URL          string
	OriginalName string
	Size         int64
	ContentType  string
}
