package raknet

import "errors"

// Codec errors. Every one of these is local to a single datagram: the caller
// logs it and drops the datagram, the connection (if any) continues.
var (
	ErrInvalidHeader              = errors.New("raknet: invalid header")
	ErrCompareFailed               = errors.New("raknet: magic compare failed")
	ErrInvalidIPVersion            = errors.New("raknet: invalid ip version")
	ErrTooLongZeroPadding          = errors.New("raknet: zero padding too long")
	ErrTooManyRanges               = errors.New("raknet: too many ranges")
	ErrPayloadTooLarge             = errors.New("raknet: payload too large")
	ErrSplitPacketIndexOutOfRange  = errors.New("raknet: split packet index out of range")
	ErrDuplicateSplitPacketIndex   = errors.New("raknet: duplicate split packet index")
	ErrUnknownMessageID            = errors.New("raknet: unknown message id")
	ErrNotAllBytesRead             = errors.New("raknet: not all bytes read")
)
