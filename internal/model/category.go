package model

// RuleType identifies how a category rule is evaluated against a file.
type RuleType string

const (
	// RuleExtension matches the file extension, case-insensitively. The
	// pattern may be a comma-separated list and may omit the leading dot.
	RuleExtension RuleType = "extension"
	// RuleNameContains matches a case-insensitive substring of the file name.
	RuleNameContains RuleType = "nameContains"
	// RuleNameRegex matches the file name against a regular expression.
	RuleNameRegex RuleType = "nameRegex"
	// RuleMimeType matches the MIME type derived from the file extension.
	RuleMimeType RuleType = "mimeType"
	// RuleLlmKeyword is never resolved locally; it defers the file to the
	// LLM classifier with the pattern as a hint.
	RuleLlmKeyword RuleType = "llmKeyword"
)

// CategoryRule is a single predicate within a category. Rules are evaluated
// in ascending Priority order; priorities are unique within a category.
type CategoryRule struct {
	RuleType RuleType `json:"rule_type"`
	Pattern  string   `json:"pattern"`
	Priority int      `json:"priority"`
}

// Category describes one destination bucket for organized files.
type Category struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	TargetFolder string         `json:"target_folder"`
	Icon         string         `json:"icon,omitempty"`
	Color        string         `json:"color,omitempty"`
	Rules        []CategoryRule `json:"rules"`
}

// DefaultCategories returns the built-in category set used when no
// user-edited categories file exists.
func DefaultCategories() []Category {
	return []Category{
		{
			ID:           "documents",
			Name:         "Documents",
			Description:  "PDF, Word, Excel and other document files",
			TargetFolder: "Documents",
			Icon:         "file-text",
			Color:        "#3B82F6",
			Rules: []CategoryRule{
				{RuleType: RuleExtension, Pattern: "pdf,doc,docx,xls,xlsx,ppt,pptx,txt,rtf,odt", Priority: 1},
			},
		},
		{
			ID:           "images",
			Name:         "Images",
			Description:  "JPG, PNG, GIF and other image files",
			TargetFolder: "Images",
			Icon:         "image",
			Color:        "#10B981",
			Rules: []CategoryRule{
				{RuleType: RuleExtension, Pattern: "jpg,jpeg,png,gif,webp,svg,bmp,ico,tiff,heic", Priority: 1},
			},
		},
		{
			ID:           "videos",
			Name:         "Videos",
			Description:  "MP4, MKV, AVI and other video files",
			TargetFolder: "Videos",
			Icon:         "video",
			Color:        "#8B5CF6",
			Rules: []CategoryRule{
				{RuleType: RuleExtension, Pattern: "mp4,mkv,avi,mov,wmv,flv,webm,m4v", Priority: 1},
			},
		},
		{
			ID:           "music",
			Name:         "Music",
			Description:  "MP3, FLAC, WAV and other audio files",
			TargetFolder: "Music",
			Icon:         "music",
			Color:        "#F59E0B",
			Rules: []CategoryRule{
				{RuleType: RuleExtension, Pattern: "mp3,flac,wav,aac,ogg,wma,m4a", Priority: 1},
			},
		},
		{
			ID:           "code",
			Name:         "Code",
			Description:  "JS, Python, Rust and other source files",
			TargetFolder: "Code",
			Icon:         "code",
			Color:        "#EC4899",
			Rules: []CategoryRule{
				{RuleType: RuleExtension, Pattern: "js,ts,jsx,tsx,py,rs,go,java,c,cpp,h,hpp,cs,rb,php", Priority: 1},
			},
		},
		{
			ID:           "archives",
			Name:         "Archives",
			Description:  "ZIP, RAR, 7z and other compressed files",
			TargetFolder: "Archives",
			Icon:         "archive",
			Color:        "#6366F1",
			Rules: []CategoryRule{
				{RuleType: RuleExtension, Pattern: "zip,rar,7z,tar,gz,bz2,xz", Priority: 1},
			},
		},
		{
			ID:           "others",
			Name:         "Others",
			Description:  "Everything that fits nowhere else",
			TargetFolder: "Others",
			Icon:         "file",
			Color:        "#71717A",
			Rules:        []CategoryRule{},
		},
	}
}
