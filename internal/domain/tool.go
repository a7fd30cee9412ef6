package domain

import (
	"fmt"
	"regexp"
	"time"
)

// ToolCategory groups tools in the navigation shell
type ToolCategory string

const (
	ToolCategoryFinance   ToolCategory = "finance"
	ToolCategoryDocuments ToolCategory = "documents"
	ToolCategoryDeveloper ToolCategory = "developer"
	ToolCategoryHealth    ToolCategory = "health"
	ToolCategoryText      ToolCategory = "text"
	ToolCategoryMedia     ToolCategory = "media"
	ToolCategoryUtility   ToolCategory = "utility"
)

var categoryLabels = map[ToolCategory]string{
	ToolCategoryFinance:   "Finance",
	ToolCategoryDocuments: "Documents",
	ToolCategoryDeveloper: "Developer",
	ToolCategoryHealth:    "Health",
	ToolCategoryText:      "Text",
	ToolCategoryMedia:     "Media",
	ToolCategoryUtility:   "Utility",
}

// AllToolCategories lists categories in navigation order
func AllToolCategories() []ToolCategory {
	return []ToolCategory{
		ToolCategoryFinance,
		ToolCategoryDocuments,
		ToolCategoryDeveloper,
		ToolCategoryHealth,
		ToolCategoryText,
		ToolCategoryMedia,
		ToolCategoryUtility,
	}
}

// Label returns the display name shown next to a tool
func (c ToolCategory) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// IsValid reports whether c is a known category
func (c ToolCategory) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// IsValidSlug reports whether s is a lowercase kebab-case identifier
func IsValidSlug(s string) bool {
	return len(s) <= 64 && slugPattern.MatchString(s)
}

// Tool is a single utility in the OneTool catalog
type Tool struct {
	ID          string
	Slug        string
	Title       string
	Category    ToolCategory
	Description string
	Path        string
	Keywords    []string
	Enabled     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTool creates a new enabled Tool instance
func NewTool(id, slug, title string, category ToolCategory, description, path string, createdAt time.Time) *Tool {
	return &Tool{
		ID:          id,
		Slug:        slug,
		Title:       title,
		Category:    category,
		Description: description,
		Path:        path,
		Enabled:     true,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func (t *Tool) SearchTitle() string       { return t.Title }
func (t *Tool) SearchCategory() string    { return t.Category.Label() }
func (t *Tool) SearchDescription() string { return t.Description }

// ValidateTool validates a Tool instance
func ValidateTool(t *Tool) error {
	if t == nil {
		return fmt.Errorf("tool cannot be nil")
	}

	if t.ID == "" {
		return fmt.Errorf("tool ID is required")
	}

	if !IsValidSlug(t.Slug) {
		return fmt.Errorf("tool Slug is invalid: %q", t.Slug)
	}

	if t.Title == "" {
		return fmt.Errorf("tool Title is required")
	}

	if !t.Category.IsValid() {
		return fmt.Errorf("tool Category is invalid: %s", t.Category)
	}

	if t.Path == "" {
		return fmt.Errorf("tool Path is required")
	}

	return nil
}
