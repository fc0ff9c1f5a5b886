package lineclass

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/tsawler/blocktree/model"
)

var dotLeader = regexp.MustCompile(`\.{4,}|(\.\s){3,}\.|…{2,}|·{4,}`)

// Config holds the thresholds used by the line classifier
type Config struct {
	// TableRowScore is the share of numeric, dated or title-case tokens above
	// which a line reads as a table row.
	// Default: 0.7
	TableRowScore float64

	// CellTableRowScore is the lower score accepted when the line visibly
	// splits into two or more cells.
	// Default: 0.5
	CellTableRowScore float64

	// TitleCaseRatio is the share of title-case content words above which a
	// short line reads as a header.
	// Default: 0.9
	TitleCaseRatio float64

	// MaxTitleWords bounds the content words of a title-case header.
	// Default: 10
	MaxTitleWords int

	// MaxHeadingWords bounds the words following a numbering marker for the
	// line to count as a numbered heading.
	// Default: 8
	MaxHeadingWords int

	// MaxHeaderCommas is the most commas a header may contain unless it
	// starts with "Section".
	// Default: 1
	MaxHeaderCommas int

	// MinRuleGlyphs is the fewest glyphs that make a text-drawn rule.
	// Default: 3
	MinRuleGlyphs int

	// Keywords are the structural words that open a header when followed by
	// exactly one number.
	// Default: section, article, note, chapter
	Keywords []string
}

// DefaultConfig returns the default classifier configuration
func DefaultConfig() Config {
	return Config{
		TableRowScore:     0.7,
		CellTableRowScore: 0.5,
		TitleCaseRatio:    0.9,
		MaxTitleWords:     10,
		MaxHeadingWords:   8,
		MaxHeaderCommas:   1,
		MinRuleGlyphs:     3,
		Keywords:          []string{"section", "article", "note", "chapter"},
	}
}

// Visual is optional typographic evidence about a line
type Visual struct {
	Bold         bool
	Centered     bool
	LikelyHeader bool    // the line's style class is set apart from the body
	SizeRatio    float64 // font size relative to the document median
	Cells        int     // horizontally separated fragments on the line
	Footnote     bool    // the line's style class sits clearly below the body size
}

// Features are the lexical features of one line
type Features struct {
	Tokens []Token

	WordCount      int
	EffectiveWords int // alphabetic non-stopword tokens
	AlphaWords     int
	TitleWords     int // effective words in title case
	NumericTokens  int
	CurrencyTokens int
	PercentTokens  int
	DateTokens     int
	Commas         int

	TitleRatio float64
	TableScore float64
	AllCaps    bool
	DotLeader  bool
	Address    bool

	EndsWithPeriod     bool
	EndsWithTerminator bool

	Bullet     string
	BulletKind string
	// Numbering is the leading marker; Rest is the text after it.
	Numbering *model.Numbering
	Rest      string
	// Keyword is the structural word opening the line, if any, and
	// KeywordNumbering the number following it.
	Keyword          string
	KeywordNumbers   int
	KeywordNumbering *model.Numbering

	Flags       model.LineFlags
	NounChunks  []string
	QuotedTerms []string
}

// Result is the outcome of classifying one line
type Result struct {
	Type     model.BlockType
	Features Features
}

// Numbering returns the numbering a header or list item carries, preferring
// a leading marker over a keyword number.
func (r Result) Numbering() *model.Numbering {
	if r.Features.Numbering != nil {
		return r.Features.Numbering
	}
	if r.Type == model.TypeHeader {
		return r.Features.KeywordNumbering
	}
	return nil
}

// Classifier classifies lines. It holds no per-document state and is safe
// for concurrent use.
type Classifier struct {
	config   Config
	keywords map[string]bool
}

// NewClassifier creates a classifier with the default configuration
func NewClassifier() *Classifier {
	return NewClassifierWithConfig(DefaultConfig())
}

// NewClassifierWithConfig creates a classifier with a custom configuration
func NewClassifierWithConfig(config Config) *Classifier {
	kw := make(map[string]bool, len(config.Keywords))
	for _, k := range config.Keywords {
		kw[strings.ToLower(k)] = true
	}
	return &Classifier{config: config, keywords: kw}
}

// Config returns the classifier configuration
func (c *Classifier) Config() Config {
	return c.config
}

// Classify classifies a line. The order of checks is: rule, dot-leader table
// row, header, scored table row, list item, paragraph.
func (c *Classifier) Classify(text string, v *Visual) Result {
	s := strings.TrimSpace(text)
	if s == "" {
		return Result{Type: model.TypePara}
	}
	f := c.Features(s)
	res := Result{Features: f}

	switch {
	case IsRule(s, c.config.MinRuleGlyphs):
		res.Type = model.TypeRule
	case f.DotLeader:
		res.Type = model.TypeTableRow
	case c.isHeader(f, v):
		res.Type = model.TypeHeader
	case c.isTableRow(f, v):
		res.Type = model.TypeTableRow
	case f.Bullet != "" || f.Numbering != nil:
		res.Type = model.TypeListItem
	default:
		res.Type = model.TypePara
	}
	return res
}

// Features computes the lexical features of a line
func (c *Classifier) Features(text string) Features {
	s := strings.TrimSpace(text)
	var f Features
	if s == "" {
		return f
	}
	f.Tokens = Tokenize(s)
	f.WordCount = len(f.Tokens)

	scored := 0
	for _, t := range f.Tokens {
		if t.Alpha {
			f.AlphaWords++
		}
		if t.Alpha && !t.Stopword {
			f.EffectiveWords++
			if t.Title {
				f.TitleWords++
			}
		}
		if t.Numeric() {
			f.NumericTokens++
		}
		if t.Currency {
			f.CurrencyTokens++
		}
		if t.Percent {
			f.PercentTokens++
		}
		if t.Date {
			f.DateTokens++
		}
		if t.Numeric() || (t.Alpha && t.Title) {
			scored++
		}
	}
	if f.EffectiveWords > 0 {
		f.TitleRatio = float64(f.TitleWords) / float64(f.EffectiveWords)
	}
	if f.WordCount > 0 {
		f.TableScore = float64(scored) / float64(f.WordCount)
	}

	f.Commas = strings.Count(s, ",")
	f.AllCaps = isAllCaps(s)
	f.DotLeader = dotLeader.MatchString(s)
	f.Address = IsAddress(s)
	f.EndsWithTerminator = EndsWithTerminator(s)
	f.EndsWithPeriod = strings.HasSuffix(strings.TrimRight(s, closingMarks), ".")

	f.Bullet, f.BulletKind, _ = DetectBullet(s)
	if f.Bullet == "" && len(f.Tokens) > 1 {
		if n := ParseNumbering(f.Tokens[0].Raw); n != nil {
			f.Numbering = n
			f.Rest = strings.TrimSpace(strings.TrimPrefix(s, f.Tokens[0].Raw))
		}
	}

	if len(f.Tokens) > 1 && c.keywords[strings.ToLower(f.Tokens[0].Word)] {
		f.Keyword = f.Tokens[0].Word
		for i, t := range f.Tokens[1:] {
			n := parseNumbering(t.Raw, true)
			if t.Number || n != nil {
				f.KeywordNumbers++
				if i == 0 && n != nil {
					f.KeywordNumbering = n
				}
			}
		}
	}

	f.Flags = model.LineFlags{
		Incomplete: IsIncomplete(s),
		Continuing: IsContinuing(s),
		Numbered:   f.Numbering != nil,
		Caps:       f.AllCaps,
	}
	f.NounChunks = NounChunks(f.Tokens)
	f.QuotedTerms = QuotedTerms(s)
	return f
}

func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsLower(r) {
			return false
		}
		letters++
	}
	return letters >= 2
}

// headerSignal names the rule that makes a line look like a header, or "".
func (c *Classifier) headerSignal(f Features, v *Visual) string {
	money := f.CurrencyTokens+f.PercentTokens > 0
	switch {
	case f.Keyword != "" && f.KeywordNumbers == 1 && (f.WordCount <= c.config.MaxTitleWords || f.AllCaps):
		return "keyword"
	case f.Numbering != nil && c.isHeadingRest(f.Rest, v):
		return "numbered"
	case f.AllCaps && f.AlphaWords > 0 && !money:
		return "caps"
	case f.EffectiveWords > 0 && f.EffectiveWords < c.config.MaxTitleWords &&
		f.TitleRatio > c.config.TitleCaseRatio && f.NumericTokens == 0:
		return "title"
	case v != nil && (v.LikelyHeader || (v.Bold && v.SizeRatio >= 1)) &&
		f.EffectiveWords > 0 && f.EffectiveWords < c.config.MaxTitleWords && !money:
		return "visual"
	}
	return ""
}

// isHeadingRest reports whether the text after a numbering marker reads as
// a heading: short, capitalised, no money and no closing terminator unless
// the line is visibly set apart.
func (c *Classifier) isHeadingRest(rest string, v *Visual) bool {
	if rest == "" {
		return false
	}
	tokens := Tokenize(rest)
	if len(tokens) > c.config.MaxHeadingWords {
		return false
	}
	first := []rune(tokens[0].Word)
	if len(first) == 0 || !unicode.IsUpper(first[0]) {
		return false
	}
	effective, title := 0, 0
	for _, t := range tokens {
		if t.Currency || t.Percent {
			return false
		}
		if t.Alpha && !t.Stopword {
			effective++
			if t.Title {
				title++
			}
		}
	}
	visual := v != nil && (v.LikelyHeader || v.Bold)
	if EndsWithTerminator(rest) && !visual {
		return false
	}
	return visual || isAllCaps(rest) || (effective > 0 && float64(title)/float64(effective) >= 0.5)
}

func (c *Classifier) isHeader(f Features, v *Visual) bool {
	if f.Bullet != "" || f.Address || f.Flags.Continuing {
		return false
	}
	if f.Commas > c.config.MaxHeaderCommas && !strings.EqualFold(firstWord(f), "section") {
		return false
	}
	signal := c.headerSignal(f, v)
	if signal == "" {
		return false
	}
	// Footnote-sized text is never a heading unless a keyword names it.
	if v != nil && v.Footnote && signal != "keyword" {
		return false
	}
	// Cells with numbers read as a table row, not a heading.
	if v != nil && v.Cells >= 2 && f.NumericTokens > 0 && signal != "keyword" {
		return false
	}
	if f.EndsWithTerminator {
		dominant := signal == "keyword" || signal == "numbered" || (v != nil && (v.LikelyHeader || v.Bold))
		if !dominant {
			return false
		}
	}
	return true
}

func firstWord(f Features) string {
	if len(f.Tokens) == 0 {
		return ""
	}
	return f.Tokens[0].Word
}

func (c *Classifier) isTableRow(f Features, v *Visual) bool {
	if f.Address || f.EndsWithPeriod || f.WordCount < 2 || f.NumericTokens == 0 {
		return false
	}
	if f.TableScore > c.config.TableRowScore {
		return true
	}
	return v != nil && v.Cells >= 2 && f.TableScore >= c.config.CellTableRowScore
}
