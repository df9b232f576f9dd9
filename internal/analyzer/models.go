package analyzer

type CheckName string

const (
	CheckTitle       CheckName = "title"
	CheckDescription CheckName = "description"
	CheckHeadings    CheckName = "headings"
	CheckImages      CheckName = "images"
	CheckLinks       CheckName = "links"
	CheckKeywords    CheckName = "keywords"
)

// CheckNames lists the checks in evaluation order.
var CheckNames = []CheckName{
	CheckTitle,
	CheckDescription,
	CheckHeadings,
	CheckImages,
	CheckLinks,
	CheckKeywords,
}

const (
	maxScore = 100

	penaltyMissingTitle       = 15
	penaltyTitleLength        = 10
	penaltyMissingDescription = 15
	penaltyDescriptionLength  = 10
	penaltyMissingH1          = 10
	penaltyMultipleH1         = 5
	penaltyImageAlt           = 10
	penaltyLinkText           = 5
	penaltyThinContent        = 10

	minTitleLength       = 30
	maxTitleLength       = 60
	minDescriptionLength = 120
	maxDescriptionLength = 160
	minBodyTextLength    = 300
)

const (
	SuggestionAddTitle          = "Add a title tag to your page"
	SuggestionTitleLength       = "Title length should be between 30-60 characters"
	SuggestionAddDescription    = "Add a meta description"
	SuggestionDescriptionLength = "Meta description length should be between 120-160 characters"
	SuggestionAddH1             = "Add an H1 heading"
	SuggestionSingleH1          = "Use only one H1 heading per page"
	SuggestionImageAlt          = "Add alt text to all images"
	SuggestionLinkText          = "Ensure all links have descriptive text"
	SuggestionMoreContent       = "Add more content to improve keyword density"
	SuggestionInvalidMarkup     = "The HTML markup could not be parsed. Check the document for invalid markup"
)

// Checks holds the pass/fail outcome of every check. A check can pass while
// still contributing a suggestion (title and description length).
type Checks struct {
	Title       bool `json:"title"`
	Description bool `json:"description"`
	Headings    bool `json:"headings"`
	Images      bool `json:"images"`
	Links       bool `json:"links"`
	Keywords    bool `json:"keywords"`
}

// Map returns the checks keyed by check name.
func (c Checks) Map() map[string]bool {
	return map[string]bool{
		string(CheckTitle):       c.Title,
		string(CheckDescription): c.Description,
		string(CheckHeadings):    c.Headings,
		string(CheckImages):      c.Images,
		string(CheckLinks):       c.Links,
		string(CheckKeywords):    c.Keywords,
	}
}

// Passed reports the outcome of a single named check.
func (c Checks) Passed(name CheckName) bool {
	return c.Map()[string(name)]
}

// Metrics are the raw measurements taken while checking. They are
// informational and never change the score.
type Metrics struct {
	TitleLength       int `json:"titleLength"`
	DescriptionLength int `json:"descriptionLength"`
	H1Count           int `json:"h1Count"`
	ImageCount        int `json:"imageCount"`
	ImagesMissingAlt  int `json:"imagesMissingAlt"`
	LinkCount         int `json:"linkCount"`
	LinksWithoutText  int `json:"linksWithoutText"`
	BodyTextLength    int `json:"bodyTextLength"`
}

type AnalysisResult struct {
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
	Checks      Checks   `json:"checks"`
	Metrics     Metrics  `json:"metrics"`
}

// BatchItem is one document submitted to AnalyzeBatch.
type BatchItem struct {
	ID   string
	HTML string
}

type BatchResult struct {
	ID     string
	Result *AnalysisResult
}
