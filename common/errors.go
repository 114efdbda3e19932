package common

import (
	"errors"
)

var ErrTransferStalled = errors.New("transfer stalled")
var ErrTransferProcessFailed = errors.New("transfer process failed")
var ErrFileMissingAfterTransfer = errors.New("file missing after transfer")
var ErrInsufficientDisk = errors.New("insufficient disk space")
var ErrUploadFailed = errors.New("upload failed")
var ErrRemuxFailed = errors.New("remux failed")
var ErrMissingCredential = errors.New("upload credential not set")
