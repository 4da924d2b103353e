package search

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var industryAliases = map[string][]string{
	"technology": {"tech", "software", "it", "artificial intelligence", "ai", "machine learning", "ml", "deep learning", "data science", "cloud", "saas", "computer", "科技", "技术", "互联网"},
	"finance":    {"fintech", "banking", "financial", "investment", "trading", "insurance", "金融", "银行", "投资"},
	"healthcare": {"health", "medical", "biotech", "pharma", "hospital", "clinic", "医疗", "健康", "生物"},
	"e-commerce": {"ecommerce", "retail", "shopping", "marketplace", "电商", "零售"},
	"education":  {"edtech", "learning", "school", "university", "training", "教育", "培训"},
	"retail":     {"shopping", "store", "consumer", "fashion", "零售", "消费"},
}

var locationAliases = map[string][]string{
	"london":        {"uk", "united kingdom", "britain", "england", "europe", "英国", "伦敦", "欧洲"},
	"berlin":        {"germany", "deutschland", "europe", "德国", "柏林", "欧洲"},
	"munich":        {"germany", "deutschland", "europe", "德国", "慕尼黑", "欧洲"},
	"paris":         {"france", "europe", "法国", "巴黎", "欧洲"},
	"milan":         {"italy", "italia", "europe", "意大利", "米兰", "欧洲"},
	"barcelona":     {"spain", "españa", "europe", "西班牙", "巴塞罗那", "欧洲"},
	"dublin":        {"ireland", "europe", "爱尔兰", "都柏林", "欧洲"},
	"helsinki":      {"finland", "europe", "nordic", "芬兰", "赫尔辛基", "欧洲", "北欧"},
	"amsterdam":     {"netherlands", "holland", "europe", "荷兰", "阿姆斯特丹", "欧洲"},
	"stockholm":     {"sweden", "europe", "nordic", "瑞典", "斯德哥尔摩", "欧洲", "北欧"},
	"zurich":        {"switzerland", "swiss", "europe", "瑞士", "苏黎世", "欧洲"},
	"singapore":     {"sg", "asia", "新加坡", "亚洲"},
	"tokyo":         {"japan", "asia", "日本", "东京", "亚洲"},
	"new york":      {"usa", "united states", "america", "ny", "nyc", "美国", "纽约"},
	"san francisco": {"usa", "united states", "america", "sf", "bay area", "silicon valley", "美国", "旧金山", "硅谷"},
	"seattle":       {"usa", "united states", "america", "美国", "西雅图"},
	"boston":        {"usa", "united states", "america", "美国", "波士顿"},
	"austin":        {"usa", "united states", "america", "texas", "美国", "奥斯汀"},
	"sydney":        {"australia", "澳大利亚", "悉尼"},
	"hong kong":     {"hk", "asia", "香港", "亚洲"},
	"seoul":         {"korea", "south korea", "asia", "韩国", "首尔", "亚洲"},
	"menlo park":    {"usa", "united states", "america", "silicon valley", "美国", "硅谷"},
	"mountain view": {"usa", "united states", "america", "silicon valley", "美国", "硅谷"},
}

var titleAliases = map[string][]string{
	"product manager":          {"pm", "产品经理", "产品管理", "product management"},
	"senior product manager":   {"senior pm", "高级产品经理", "资深产品经理"},
	"software engineer":        {"swe", "developer", "programmer", "软件工程师", "开发工程师", "程序员"},
	"senior software engineer": {"senior swe", "senior developer", "高级软件工程师", "高级开发"},
	"cto":                      {"chief technology officer", "首席技术官", "技术总监"},
	"ceo":                      {"chief executive officer", "首席执行官", "总裁"},
	"cfo":                      {"chief financial officer", "首席财务官", "财务总监"},
	"vp of engineering":        {"vp engineering", "engineering vp", "工程副总裁", "技术副总裁"},
	"data scientist":           {"data science", "数据科学家", "数据分析师"},
	"ml engineer":              {"machine learning engineer", "机器学习工程师", "ai engineer", "ai工程师"},
	"designer":                 {"ui designer", "ux designer", "设计师", "产品设计师"},
	"marketing":                {"marketing manager", "marketing director", "市场经理", "市场总监"},
}

var (
	smallHeadcounts = []string{"1-10", "11-50", "51-200"}
	largeHeadcounts = []string{"501-1000", "1001-5000", "5001+"}
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func containsAny(s string, subs []string) bool {
	return slices.ContainsFunc(subs, func(sub string) bool { return strings.Contains(s, sub) })
}

// mutual reports whether either string contains the other.
func mutual(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// anyOf is true when wanted is empty or match accepts one of its values.
func anyOf(value string, wanted []string, match func(value, filter string) bool) bool {
	if len(wanted) == 0 {
		return true
	}
	v := norm(value)
	for _, w := range wanted {
		if f := norm(w); f != "" && match(v, f) {
			return true
		}
	}
	return false
}

func matchTitle(value, filter string) bool {
	if mutual(value, filter) {
		return true
	}
	for title, aliases := range titleAliases {
		if !strings.Contains(value, title) {
			continue
		}
		if strings.Contains(filter, title) || containsAny(filter, aliases) {
			return true
		}
	}
	return false
}

func matchIndustry(value, filter string) bool {
	if mutual(value, filter) {
		return true
	}
	for industry, aliases := range industryAliases {
		if strings.Contains(value, industry) && containsAny(filter, aliases) {
			return true
		}
		if strings.Contains(filter, industry) && containsAny(value, aliases) {
			return true
		}
	}
	return false
}

func matchLocation(value, filter string) bool {
	if mutual(value, filter) {
		return true
	}
	for location, aliases := range locationAliases {
		if strings.Contains(value, location) && containsAny(filter, aliases) {
			return true
		}
	}
	return false
}

func matchSubstring(value, filter string) bool {
	return strings.Contains(value, filter)
}

func matchHeadcount(value, filter string) bool {
	switch {
	case strings.Contains(filter, "startup") || strings.Contains(filter, "small"):
		return slices.Contains(smallHeadcounts, value)
	case strings.Contains(filter, "large") || strings.Contains(filter, "enterprise"):
		return slices.Contains(largeHeadcounts, value)
	default:
		return strings.Contains(value, filter)
	}
}

var experienceFloor = regexp.MustCompile(`(\d+)\s*(?:\+|years?)`)

var chineseYears = map[string]int{"三年": 3, "五年": 5, "十年": 10}

// matchExperience accepts "N+", "N years", a few Chinese forms, and the
// words senior and junior/entry. Anything else matches everyone.
func matchExperience(years int, filter string) bool {
	f := norm(filter)
	if f == "" {
		return true
	}
	if m := experienceFloor.FindStringSubmatch(f); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return years >= n
		}
	}
	for word, n := range chineseYears {
		if strings.Contains(f, word) {
			return years >= n
		}
	}
	switch {
	case strings.Contains(f, "senior"):
		return years >= 5
	case strings.Contains(f, "junior") || strings.Contains(f, "entry"):
		return years <= 3
	}
	return true
}

func matchSkills(skills []string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, s := range skills {
		if anyOf(s, wanted, mutual) {
			return true
		}
	}
	return false
}
