// Package localfont is the boundary to the fonts installed on the machine.
//
// Host is the capability the rest of the application depends on. FS is the
// implementation that scans font directories and reads OpenType name tables.
package localfont

import (
	"context"
	"errors"

	"github.com/five82/fontshelf/internal/font"
)

// Permission is the host's answer to "may fonts be enumerated".
type Permission string

const (
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionPrompt      Permission = "prompt"
	PermissionUnsupported Permission = "unsupported"
)

// Host enumerates local fonts.
type Host interface {
	// CheckPermission never fails; problems map onto a Permission value.
	CheckPermission(ctx context.Context) Permission
	// ListFonts returns every face, or only the faces whose IDs are given.
	ListFonts(ctx context.Context, ids ...string) ([]font.Descriptor, error)
	// FetchBinary returns the raw file holding the face with id.
	FetchBinary(ctx context.Context, id string) ([]byte, error)
}

var (
	// ErrUnsupported reports a host with no font enumeration capability.
	ErrUnsupported = errors.New("local font access is not supported on this system")
	// ErrPermissionDenied reports that the font directories cannot be read.
	ErrPermissionDenied = errors.New("permission to read local fonts was denied")
	// ErrNotFound reports an ID with no matching face.
	ErrNotFound = errors.New("font not found")
)

// EnumerationError wraps a failure while listing fonts. Its message is the
// cause's message unchanged.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	if e.Err == nil {
		return "font enumeration failed"
	}
	return e.Err.Error()
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}
