package constants

import "errors"

// Configuration errors.
var (
	ErrBaseURLRequired  = errors.New("base URL is required (use --base-url or set base_url in config)")
	ErrConfigNotWritten = errors.New("configuration could not be written")
)

// Flag parsing errors.
var (
	ErrInvalidQueryFlag  = errors.New("invalid --query value, expected key=value")
	ErrInvalidHeaderFlag = errors.New("invalid --header value, expected name:value")
	ErrInvalidDataFlag   = errors.New("invalid --data value, expected JSON")
	ErrInvalidOutput     = errors.New("invalid output format, expected table, json or yaml")
)
