package arsession

import "errors"

// Bootstrap errors. All are terminal for that session attempt; the caller
// owns user-facing messaging and retry.
var (
	ErrUnsupportedPlatform       = errors.New("immersive AR is not supported on this device")
	ErrSessionRequestFailed      = errors.New("the AR session request was rejected")
	ErrAssetLoadFailed           = errors.New("the 3D asset could not be loaded")
	ErrReferenceSpaceUnavailable = errors.New("no usable reference space is available")
)
