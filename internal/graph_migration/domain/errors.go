package domain

import "errors"

var (
	ErrReferentialGap = errors.New("relationship endpoint not found")
	ErrMalformedValue = errors.New("malformed value")
	ErrLoadAborted    = errors.New("load aborted")
	ErrRunNotFound    = errors.New("load run not found")
)
