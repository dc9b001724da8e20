package domain

import "errors"

var (
	// ErrPassageNotFound indicates the requested passage is not in the catalog.
	ErrPassageNotFound = errors.New("passage not found")
	// ErrMetadataUnavailable indicates the content index could not be loaded.
	ErrMetadataUnavailable = errors.New("content metadata unavailable")
	// ErrNoQuestions is returned when binding a passage with an empty question set.
	ErrNoQuestions = errors.New("passage has no questions")
	// ErrAlreadySubmitted is returned when an attempt is submitted twice.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	// ErrNotSubmitted is returned when explanations are requested before grading.
	ErrNotSubmitted = errors.New("attempt not submitted yet")
)
