package utils

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	// Base directory for storing uploaded files
	uploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum file size (50MB, content videos included)
	maxFileSize = 50 * 1024 * 1024
)

var (
	allowedImageExts = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	}
	allowedVideoExts = map[string]bool{
		".mp4":  true,
		".mov":  true,
		".mkv":  true,
		".webm": true,
	}
	allowedDocExts = map[string]bool{
		".pdf": true,
	}
)

// cleanFilename removes any potentially dangerous characters from the filename
func cleanFilename(filename string) string {
	filename = filepath.Base(filename)
	reg := regexp.MustCompile(`[^a-zA-Z0-9.-]`)
	return reg.ReplaceAllString(filename, "")
}

// UniqueFilename prefixes a cleaned filename with a UUID so concurrent
// uploads never collide.
func UniqueFilename(filename string) string {
	return fmt.Sprintf("%s-%s", uuid.New().String(), cleanFilename(filename))
}

// ValidateFileType checks if the file extension is allowed for the given media type
func ValidateFileType(filename, mediaType string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	switch mediaType {
	case "image":
		if !allowedImageExts[ext] {
			return fmt.Errorf("unsupported image format. Allowed formats: jpg, jpeg, png, gif, webp")
		}
	case "video":
		if !allowedVideoExts[ext] {
			return fmt.Errorf("unsupported video format. Allowed formats: mp4, mov, mkv, webm")
		}
	case "document":
		if !allowedDocExts[ext] {
			return fmt.Errorf("unsupported document format. Allowed formats: pdf")
		}
	default:
		return fmt.Errorf("invalid media type. Must be 'image', 'video' or 'document'")
	}
	return nil
}

// InitializeStorage creates necessary directories for file storage
func InitializeStorage() error {
	if err := os.MkdirAll(uploadBaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %v", err)
	}

	dirs := []string{
		filepath.Join(uploadBaseDir, "proofs"),
		filepath.Join(uploadBaseDir, "content"),
		filepath.Join(uploadBaseDir, "thumbnails"),
		filepath.Join(uploadBaseDir, "barcodes"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}

// UploadFileToPath saves a file to a subdirectory under uploads and returns
// its serving URL.
func UploadFileToPath(fileData []byte, filename string, mediaType string, subDir string) (string, error) {
	if len(fileData) > maxFileSize {
		return "", fmt.Errorf("file too large. Maximum size is %d bytes", maxFileSize)
	}

	cleanName := cleanFilename(filename)
	if err := ValidateFileType(cleanName, mediaType); err != nil {
		return "", err
	}

	fullPath := filepath.Join(uploadBaseDir, subDir, cleanName)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", filepath.Dir(fullPath), err)
	}

	if err := os.WriteFile(fullPath, fileData, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %v", fullPath, err)
	}

	return fmt.Sprintf("%s/%s/%s", baseURL, subDir, cleanName), nil
}

// GenerateImageThumbnail resizes an uploaded image to a 320px-wide thumbnail
// and returns its URL.
func GenerateImageThumbnail(imageData []byte, filename string) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %v", err)
	}

	resized := imaging.Resize(img, 320, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %v", err)
	}

	name := strings.TrimSuffix(cleanFilename(filename), filepath.Ext(filename)) + ".jpg"
	fullPath := filepath.Join(uploadBaseDir, "thumbnails", name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %v", err)
	}
	if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %v", err)
	}

	return fmt.Sprintf("%s/thumbnails/%s", baseURL, name), nil
}

// GenerateVideoThumbnail extracts a frame from an uploaded video and saves a
// resized thumbnail next to the other thumbnails.
func GenerateVideoThumbnail(videoURL string) (string, error) {
	if err := InitializeStorage(); err != nil {
		return "", err
	}

	videoPath := strings.TrimPrefix(videoURL, baseURL+"/")
	fullVideoPath := filepath.Join(uploadBaseDir, videoPath)

	tempPath := filepath.Join(os.TempDir(), uuid.New().String()+".jpg")

	err := ffmpeg.Input(fullVideoPath).
		Output(tempPath, ffmpeg.KwArgs{"vframes": 1, "ss": "00:00:01"}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to generate thumbnail: %v", err)
	}
	defer os.Remove(tempPath)

	frameData, err := os.ReadFile(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to read thumbnail file: %v", err)
	}

	return GenerateImageThumbnail(frameData, filepath.Base(videoPath))
}
