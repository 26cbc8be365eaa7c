package media

import (
	"errors"
	"fmt"
)

var (
	// ErrPhotoNotSaved means the copy failed; nothing was written to the profile.
	ErrPhotoNotSaved = errors.New("could not save the photo, please try again")
	// ErrPhotoNotRecorded means the file is stored but the profile does not
	// point at it yet.
	ErrPhotoNotRecorded = errors.New("the photo was saved but not linked to the profile, please try again")
	ErrUserNotFound     = errors.New("user not found")
)

// PhotoNotRecordedError carries the stored file so the row update can be
// retried with RecordProfilePhoto without copying again.
type PhotoNotRecordedError struct {
	StoredPath string
	Err        error
}

func (e *PhotoNotRecordedError) Error() string {
	return fmt.Sprintf("%s (%s): %s", ErrPhotoNotRecorded.Error(), e.StoredPath, e.Err.Error())
}

func (e *PhotoNotRecordedError) Unwrap() []error {
	return []error{ErrPhotoNotRecorded, e.Err}
}
