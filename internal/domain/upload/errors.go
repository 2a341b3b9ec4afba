package upload

import "errors"

var (
	ErrUploadNotFound      = errors.New("upload not found")
	ErrNotOwner            = errors.New("you do not own this upload")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType     = errors.New("only images are allowed")
	ErrEmptyFile           = errors.New("file is empty")
	ErrUploadFailed        = errors.New("image host rejected the upload")
	ErrUnsupportedImageRef = errors.New("image must be an http(s) URL or a base64 data URI")
)
