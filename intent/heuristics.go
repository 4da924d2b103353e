package intent

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/smallnest/talentsearch/filters"
)

var confirmWords = []string{
	"yes", "yeah", "yep", "sure", "ok", "okay", "please", "go", "proceed", "search", "find",
	"是", "好", "好的", "可以", "行", "确认", "搜索", "开始", "执行", "查找",
}

var confirmWordPattern = regexp.MustCompile(fmt.Sprintf(`^(?:%s)[!.?！。？~]*$`, alternation(confirmWords)))

// IsConfirmWord reports whether input is a bare confirmation such as "ok!"
// or "好的".
func IsConfirmWord(input string) bool {
	return confirmWordPattern.MatchString(strings.ToLower(strings.TrimSpace(input)))
}

var (
	companySearch = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:please\s+)?(?:find|search|show|list|get|look\s+for)\s+(?:me\s+)?(?:for\s+)?(?:(?:the|some|all|these|those|their|related|matching)\s+)?compan(?:y|ies)\b`),
		regexp.MustCompile(`^(?:帮我)?(?:找|搜索|查找|搜|看看)(?:一下)?(?:相关的?|这些)?(?:公司|企业)`),
	}
	personSearch = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:please\s+)?(?:find|search|show|list|get|look\s+for)\s+(?:me\s+)?(?:for\s+)?(?:(?:the|some|all|these|those|their|related|matching)\s+)?(?:people|persons?|candidates?|talents?|employees)\b`),
		regexp.MustCompile(`^(?:帮我)?(?:找|搜索|查找|搜|看看)(?:一下)?(?:相关的?|这些)?(?:人才|候选人|人选|人(?:$|[，。,.!！?？\s]))`),
	}
)

// IsDomainSwitch reports whether input explicitly asks for the other kind of
// record than current.
func IsDomainSwitch(input string, current filters.Domain) bool {
	input = strings.TrimSpace(input)
	patterns := companySearch
	if current == filters.Company {
		patterns = personSearch
	}
	for _, p := range patterns {
		if p.MatchString(input) {
			return true
		}
	}
	return false
}

// refineVocabulary holds industry, location and company-size tokens that on
// their own add to the current search.
var refineVocabulary = []string{
	// industries
	"technology", "tech", "software", "ai", "artificial intelligence", "machine learning",
	"fintech", "finance", "banking", "insurance", "healthcare", "biotech", "pharma",
	"e-commerce", "ecommerce", "education", "edtech", "retail", "manufacturing",
	"saas", "crypto", "gaming", "media", "consulting", "legal", "real estate",
	"科技", "互联网", "金融", "医疗", "电商", "教育", "零售", "制造",
	// locations
	"singapore", "tokyo", "london", "berlin", "munich", "paris", "milan", "barcelona",
	"dublin", "amsterdam", "stockholm", "zurich", "helsinki", "new york", "san francisco",
	"seattle", "boston", "austin", "sydney", "hong kong", "seoul", "bay area",
	"silicon valley", "europe", "asia", "southeast asia", "north america", "usa", "uk",
	"japan", "china", "india", "germany", "france",
	"新加坡", "东京", "伦敦", "北京", "上海", "深圳", "香港", "欧洲", "亚洲", "美国",
	// company sizes
	"startup", "startups", "small", "mid-size", "midsize", "large", "enterprise",
	"1-10", "11-50", "51-200", "201-500", "501-1000", "1001-5000", "5001-10000", "10001+",
	"初创", "初创公司", "大公司", "中型公司",
}

var refineTrim = func(r rune) bool {
	return unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '+' && r != '-')
}

// normalize lowercases, trims surrounding punctuation and collapses spaces.
func normalize(input string) string {
	s := strings.TrimFunc(strings.ToLower(input), refineTrim)
	return strings.Join(strings.Fields(s), " ")
}

// IsRefineValue reports whether input is just a known industry, location or
// company-size value. Fragments of a token count when at least three
// characters long.
func IsRefineValue(input string) bool {
	s := normalize(input)
	if s == "" {
		return false
	}
	partial := utf8.RuneCountInString(s) >= 3
	for _, token := range refineVocabulary {
		if s == token || (partial && strings.Contains(token, s)) {
			return true
		}
	}
	return false
}

var confirmKeywords = []string{
	"yes", "yeah", "yep", "sure", "ok", "okay", "go", "go ahead", "proceed",
	"confirm", "do it", "run it", "looks good",
}

var confirmKeywordsCJK = []string{"是的", "好的", "可以", "确认", "开始", "执行", "搜索吧", "没问题"}

var confirmKeywordPattern = regexp.MustCompile(fmt.Sprintf(`(?i)\b(?:%s)\b`, alternation(confirmKeywords)))

// ContainsConfirmKeyword reports whether input contains a confirmation word
// anywhere. Latin keywords must stand as whole words, so "Goa" does not
// count as "go".
func ContainsConfirmKeyword(input string) bool {
	if confirmKeywordPattern.MatchString(input) {
		return true
	}
	for _, kw := range confirmKeywordsCJK {
		if strings.Contains(input, kw) {
			return true
		}
	}
	return false
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}
