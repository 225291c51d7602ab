package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 20000
	maxTagLen         = 64
	maxTagsPerProject = 10
	maxImagesCount    = 20
)

var tagRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidateProjectTitle checks title presence and length.
func ValidateProjectTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLen {
		return fmt.Errorf("title must not exceed %d characters", maxTitleLen)
	}
	return nil
}

// ValidateProjectDescription checks description length.
func ValidateProjectDescription(description string) error {
	if len(description) > maxDescriptionLen {
		return fmt.Errorf("description must not exceed %d characters", maxDescriptionLen)
	}
	return nil
}

// NormalizeTags lowercases, trims, deduplicates and validates a tag list.
func NormalizeTags(tags []string) ([]string, error) {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if len(t) > maxTagLen {
			return nil, fmt.Errorf("tag %q exceeds %d characters", t, maxTagLen)
		}
		if !tagRegex.MatchString(t) {
			return nil, fmt.Errorf("tag %q may only contain lowercase letters, numbers, and hyphens", t)
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) > maxTagsPerProject {
		return nil, fmt.Errorf("a project may carry at most %d tags", maxTagsPerProject)
	}
	return out, nil
}

// ValidateImageURLs checks the image gallery size.
func ValidateImageURLs(urls []string) error {
	if len(urls) > maxImagesCount {
		return fmt.Errorf("a project may carry at most %d images", maxImagesCount)
	}
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("image URLs must not be empty")
		}
	}
	return nil
}
