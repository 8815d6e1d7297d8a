// utils/valid.go
package utils

import (
	"errors"
	"html"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".mkv": true,
}

// IsValidImageFile checks if the uploaded file is a valid image
func IsValidImageFile(file *multipart.FileHeader) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(file.Filename))]
}

// IsValidVideoFile checks if the uploaded file is a valid video
func IsValidVideoFile(file *multipart.FileHeader) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(file.Filename))]
}

// SanitizeInput sanitizes user input to prevent XSS and injection attacks
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = html.EscapeString(input)

	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)

	scriptRegex := regexp.MustCompile(`<script[^>]*>.*?</script>`)
	return scriptRegex.ReplaceAllString(input, "")
}

// SanitizeEmail sanitizes and validates an email address
func SanitizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}
	return email, nil
}

// ValidateFile validates upload size and type for proof and content files
func ValidateFile(filename string, size int64) error {
	if size > 50*1024*1024 {
		return errors.New("file too large")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] && !videoExtensions[ext] && ext != ".pdf" {
		return errors.New("invalid file type")
	}
	return nil
}
