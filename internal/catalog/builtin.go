// Package catalog holds the built-in OneTool registry that seeds the tools
// table and backs offline search in the CLI.
package catalog

import (
	"time"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/google/uuid"
)

// toolNamespace scopes deterministic tool IDs so every deployment agrees on them.
var toolNamespace = uuid.MustParse("6f0d3c1e-6a57-4b6e-9a0c-2f7d9b1f4e21")

type entry struct {
	slug        string
	title       string
	category    domain.ToolCategory
	description string
	keywords    []string
}

var registry = []entry{
	{"sip-calculator", "SIP Calculator", domain.ToolCategoryFinance, "Project the future value of a monthly systematic investment plan", []string{"mutual fund", "investment"}},
	{"loan-emi", "Loan EMI Calculator", domain.ToolCategoryFinance, "Monthly installment and amortization schedule for a loan", []string{"mortgage", "amortization"}},
	{"smart-budget", "Smart Budget", domain.ToolCategoryFinance, "Plan monthly income against spending categories", []string{"expenses"}},
	{"compound-interest", "Compound Interest", domain.ToolCategoryFinance, "Growth of a lump sum with periodic compounding", nil},
	{"currency-converter", "Currency Converter", domain.ToolCategoryFinance, "Convert between currencies at a chosen rate", []string{"forex"}},
	{"gst-calculator", "GST Calculator", domain.ToolCategoryFinance, "Add or remove goods and services tax from a price", []string{"tax"}},
	{"tip-splitter", "Tip Splitter", domain.ToolCategoryFinance, "Split a bill and tip between people", nil},
	{"fd-calculator", "Fixed Deposit Calculator", domain.ToolCategoryFinance, "Maturity amount of a fixed deposit", []string{"fd"}},

	{"pdf-merge", "PDF Merge", domain.ToolCategoryDocuments, "Combine several PDF files into one", []string{"combine"}},
	{"pdf-split", "PDF Split", domain.ToolCategoryDocuments, "Extract page ranges from a PDF", nil},
	{"smart-scan", "Smart Scan", domain.ToolCategoryDocuments, "Turn phone photos into clean document scans", []string{"scanner"}},
	{"image-to-pdf", "Image to PDF", domain.ToolCategoryDocuments, "Bundle images into a single PDF", nil},
	{"word-to-pdf", "Word to PDF", domain.ToolCategoryDocuments, "Convert DOCX documents to PDF", []string{"docx"}},
	{"pdf-compress", "PDF Compress", domain.ToolCategoryDocuments, "Shrink PDF file size", nil},

	{"json-formatter", "JSON Formatter", domain.ToolCategoryDeveloper, "Pretty-print and validate JSON", []string{"beautify"}},
	{"sql-formatter", "SQL Formatter", domain.ToolCategoryDeveloper, "Format SQL queries for several dialects", nil},
	{"base64", "Base64 Encoder", domain.ToolCategoryDeveloper, "Encode and decode Base64 text", nil},
	{"url-encoder", "URL Encoder", domain.ToolCategoryDeveloper, "Percent-encode and decode URLs", nil},
	{"jwt-decoder", "JWT Decoder", domain.ToolCategoryDeveloper, "Inspect the header and claims of a JSON Web Token", []string{"token"}},
	{"uuid-generator", "UUID Generator", domain.ToolCategoryDeveloper, "Generate random UUIDs", []string{"guid"}},
	{"regex-tester", "Regex Tester", domain.ToolCategoryDeveloper, "Test regular expressions against sample text", []string{"regexp"}},
	{"hash-generator", "Hash Generator", domain.ToolCategoryDeveloper, "Compute MD5, SHA-1 and SHA-256 digests", nil},
	{"cron-explainer", "Cron Explainer", domain.ToolCategoryDeveloper, "Describe a cron expression in plain words", nil},

	{"bmi-calculator", "BMI Calculator", domain.ToolCategoryHealth, "Body mass index from height and weight", []string{"weight"}},
	{"water-tracker", "Water Tracker", domain.ToolCategoryHealth, "Log daily water intake", []string{"hydration"}},
	{"calorie-counter", "Calorie Counter", domain.ToolCategoryHealth, "Estimate daily calorie needs", nil},
	{"sleep-calculator", "Sleep Calculator", domain.ToolCategoryHealth, "Find wake-up times aligned with sleep cycles", nil},
	{"step-tracker", "Step Tracker", domain.ToolCategoryHealth, "Track walking goals", nil},

	{"word-counter", "Word Counter", domain.ToolCategoryText, "Count words, characters and reading time", nil},
	{"case-converter", "Case Converter", domain.ToolCategoryText, "Switch text between upper, lower and title case", nil},
	{"lorem-ipsum", "Lorem Ipsum Generator", domain.ToolCategoryText, "Generate placeholder text", nil},
	{"text-diff", "Text Diff", domain.ToolCategoryText, "Compare two texts line by line", []string{"compare"}},
	{"markdown-preview", "Markdown Preview", domain.ToolCategoryText, "Render Markdown as HTML", nil},

	{"qr-generator", "QR Code Generator", domain.ToolCategoryMedia, "Create QR codes for links and text", []string{"qrcode"}},
	{"image-resizer", "Image Resizer", domain.ToolCategoryMedia, "Resize and crop images", nil},
	{"color-picker", "Color Picker", domain.ToolCategoryMedia, "Pick colors and convert between HEX, RGB and HSL", nil},

	{"unit-converter", "Unit Converter", domain.ToolCategoryUtility, "Convert length, mass, volume and temperature", nil},
	{"age-calculator", "Age Calculator", domain.ToolCategoryUtility, "Exact age in years, months and days", nil},
	{"password-generator", "Password Generator", domain.ToolCategoryUtility, "Generate strong random passwords", nil},
	{"stopwatch", "Stopwatch", domain.ToolCategoryUtility, "Lap timer and countdown", []string{"timer"}},
}

// ToolID returns the stable ID assigned to a built-in slug.
func ToolID(slug string) string {
	return uuid.NewSHA1(toolNamespace, []byte(slug)).String()
}

// Builtin returns a fresh copy of the built-in registry in navigation order.
func Builtin() []*domain.Tool {
	return BuiltinAt(time.Unix(0, 0).UTC())
}

// BuiltinAt is Builtin with explicit timestamps, used when seeding.
func BuiltinAt(now time.Time) []*domain.Tool {
	tools := make([]*domain.Tool, 0, len(registry))
	for _, e := range registry {
		t := domain.NewTool(ToolID(e.slug), e.slug, e.title, e.category, e.description, "/tools/"+e.slug, now)
		t.Keywords = append([]string(nil), e.keywords...)
		tools = append(tools, t)
	}
	return tools
}

// Category describes a category for listing endpoints.
type Category struct {
	ID    domain.ToolCategory `json:"id"`
	Label string              `json:"label"`
	Count int                 `json:"count"`
}

// Categories counts tools per category, in navigation order.
func Categories(tools []*domain.Tool) []Category {
	counts := make(map[domain.ToolCategory]int)
	for _, t := range tools {
		counts[t.Category]++
	}

	cats := make([]Category, 0, len(counts))
	for _, c := range domain.AllToolCategories() {
		cats = append(cats, Category{ID: c, Label: c.Label(), Count: counts[c]})
	}
	return cats
}

// FilterByCategory keeps tools in category; an empty category keeps everything.
func FilterByCategory(tools []*domain.Tool, category domain.ToolCategory) []*domain.Tool {
	if category == "" {
		return tools
	}
	out := make([]*domain.Tool, 0, len(tools))
	for _, t := range tools {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}
