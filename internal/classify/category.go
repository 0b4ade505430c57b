package classify

// Category is the closed set of syntactic/semantic roles an occurrence
// can play. Exactly one category is assigned per occurrence.
type Category string

const (
	CommandInvocation   Category = "command_invocation"
	EnvironmentVariable Category = "environment_variable"
	UrlOrPath           Category = "url_or_path"
	FileOrDirectoryName Category = "file_or_directory_name"
	GenericReference    Category = "generic_reference"
	HistoricalNarrative Category = "historical_narrative"
	CategoryLabel       Category = "category_label"
	TagOrKeyword        Category = "tag_or_keyword"
)

// Categories lists every known category, in a stable order.
func Categories() []Category {
	return []Category{
		CommandInvocation,
		EnvironmentVariable,
		UrlOrPath,
		FileOrDirectoryName,
		GenericReference,
		HistoricalNarrative,
		CategoryLabel,
		TagOrKeyword,
	}
}

// Known reports whether c is a member of the closed category set.
func (c Category) Known() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// Confidence marks whether a classification may drive an automatic edit.
type Confidence int

const (
	// High confidence classifications follow the configured policy.
	High Confidence = iota
	// Low confidence classifications never receive an automatic edit and
	// require explicit human confirmation.
	Low
)

func (c Confidence) String() string {
	if c == Low {
		return "low"
	}
	return "high"
}

// Classification is the outcome of classifying one occurrence.
type Classification struct {
	Category   Category
	Confidence Confidence
	Rule       string // Name of the rule that matched, or "default".
}
