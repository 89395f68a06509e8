package domain

import "errors"

var (
	ErrMetadataUnavailable   = errors.New("loader metadata unavailable")
	ErrVersionIncompatible   = errors.New("no compatible loader version")
	ErrArtifactUnreachable   = errors.New("artifact unreachable")
	ErrInstallerFailed       = errors.New("loader installer failed")
	ErrUnsupportedVariant    = errors.New("unsupported loader type")
	ErrMissingRuntime        = errors.New("java runtime not found")
	ErrLoaderVersionRequired = errors.New("loader version is required")
	ErrVersionNotFound       = errors.New("version not found")
)
