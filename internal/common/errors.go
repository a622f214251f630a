package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("conflict")

	// Story errors
	ErrStoryNotFound    = errors.New("story not found")
	ErrAlreadyLiked     = errors.New("already liked")
	ErrNotLiked         = errors.New("not liked yet")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following yet")

	// Version/episode errors
	ErrVersionNotFound   = errors.New("version not found")
	ErrEpisodeNotFound   = errors.New("episode not found")
	ErrVersionConflict   = errors.New("version number already exists")
	ErrInvalidParent     = errors.New("parent episode must belong to a prior version of the same story")
	ErrLineageCycle      = errors.New("parent episode would create a lineage cycle")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Report errors
	ErrReportNotFound = errors.New("report not found")
	ErrSelfReport     = errors.New("cannot report your own content")
	ErrReasonRequired = errors.New("reason is required")

	// Organization errors
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrDuplicateOrganization = errors.New("organization name already exists")
	ErrNoOrganization        = errors.New("not a member of any organization")

	// User/auth errors
	ErrUserNotFound = errors.New("user not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// IsValidation reports whether err belongs to the validation family.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrSelfReport, ErrReasonRequired, ErrInvalidParent,
		ErrLineageCycle, ErrInvalidTransition, ErrAlreadyLiked, ErrNotLiked,
		ErrAlreadyFollowing, ErrNotFollowing, ErrNoOrganization,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrStoryNotFound, ErrVersionNotFound, ErrEpisodeNotFound,
		ErrReportNotFound, ErrOrganizationNotFound, ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict reports whether err belongs to the conflict family.
func IsConflict(err error) bool {
	for _, target := range []error{ErrConflict, ErrVersionConflict, ErrDuplicateOrganization} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
