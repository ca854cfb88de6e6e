package domain

import "errors"

var (
	// ErrURLRequired is returned when the request carries no URL at all.
	ErrURLRequired = errors.New("post URL required")

	// ErrInvalidURL is returned when the URL is not a twitter.com or x.com post link.
	ErrInvalidURL = errors.New("invalid post URL format")

	// ErrUpstreamUnavailable is returned when an upstream could not be reached
	// or answered with a non-success status.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamMalformed is returned when an upstream answered with a body
	// that could not be decoded or carried no data.
	ErrUpstreamMalformed = errors.New("upstream response malformed")

	// ErrTimeout is returned when an upstream call exceeded its deadline.
	ErrTimeout = errors.New("upstream timeout")

	// ErrPostUnavailable is returned when every source was tried and none
	// produced text or images.
	ErrPostUnavailable = errors.New("post unavailable")

	// ErrUnexpected covers failures outside the modeled paths.
	ErrUnexpected = errors.New("unexpected failure")

	// ErrProxyURLInvalid is returned by the image proxy for a missing,
	// unparsable or non-https target.
	ErrProxyURLInvalid = errors.New("invalid proxy target")

	// ErrProxyHostNotAllowed is returned by the image proxy when the target
	// host is not on the media allow-list.
	ErrProxyHostNotAllowed = errors.New("proxy host not allowed")
)
