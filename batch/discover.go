package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// VideoExtensions are the file extensions treated as videos in directory
// mode, matched case insensitively
var VideoExtensions = []string{".webm", ".mp4", ".avi", ".mov"}

// ErrNoVideos is returned when a directory contains no video files
var ErrNoVideos = errors.New("no video files found")

// IsVideo reports if path has one of the VideoExtensions
func IsVideo(path string) bool {

	ext := strings.ToLower(filepath.Ext(path))

	for _, v := range VideoExtensions {
		if ext == v {
			return true
		}
	}

	return false
}

// Discover walks dir recursively and returns all video files, deduplicated
// and sorted by path
func Discover(dir string) ([]string, error) {

	seen := make(map[string]struct{})

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {

		if err != nil {
			return err
		}

		if d.IsDir() || !IsVideo(path) {
			return nil
		}

		seen[filepath.Clean(path)] = struct{}{}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", dir, err)
	}

	videos := make([]string, 0, len(seen))

	for path := range seen {
		videos = append(videos, path)
	}

	sort.Strings(videos)

	return videos, nil
}
