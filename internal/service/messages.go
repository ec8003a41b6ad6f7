package service

import (
	"errors"
	"fmt"
	"strings"

	"docchat/internal/domain"
	"docchat/internal/extractor"
	"docchat/internal/index"
)

// User-facing messages.
const (
	MsgNotInitialized = "The conversation model is not initialized. Please process the files first."
	MsgRateLimited    = "We have reached the API's rate limit. Please try again later."
	MsgNoText         = "No text found in the uploaded files."
	MsgNoDocuments    = "Please upload files to get started."
	MsgSessionEnded   = "This session has ended. Please start a new one."
)

// UserMessage maps an error to the text shown to the user.
func UserMessage(err error) string {
	var be *index.BuildError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrNotInitialized):
		return MsgNotInitialized
	case errors.Is(err, domain.ErrNoDocuments):
		return MsgNoDocuments
	case errors.Is(err, domain.ErrNoText):
		return MsgNoText
	case errors.Is(err, domain.ErrSessionNotFound):
		return MsgSessionEnded
	case errors.As(err, &be):
		return fmt.Sprintf("Error creating vector store: %v", be.Err)
	case domain.IsRateLimited(err):
		return MsgRateLimited
	default:
		return fmt.Sprintf("An error occurred: %v", err)
	}
}

// FileErrorMessage describes a per-file extraction failure.
func FileErrorMessage(fe extractor.FileError) string {
	if strings.HasPrefix(strings.ToLower(fe.MediaType), domain.MediaTypeXLSX) {
		return fmt.Sprintf("Error reading Excel file: %v", fe)
	}
	return fmt.Sprintf("Error reading PDF file: %v", fe)
}

// ReportLines renders a process report as status lines for display.
func ReportLines(r *ProcessReport) []string {
	if r == nil {
		return nil
	}
	var lines []string
	for _, fe := range r.Errors {
		lines = append(lines, FileErrorMessage(fe))
	}
	if len(r.Skipped) > 0 {
		lines = append(lines, "Skipped unsupported files: "+strings.Join(r.Skipped, ", "))
	}
	if r.Chunks > 0 {
		verb := "Processed"
		if r.Merged {
			verb = "Added"
		}
		lines = append(lines, fmt.Sprintf("%s %d file(s); the index now holds %d chunks. You can start asking questions.",
			verb, len(r.Accepted), r.Chunks))
	}
	return lines
}
