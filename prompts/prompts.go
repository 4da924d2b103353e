// Package prompts holds the system prompts sent to the oracle.
package prompts

import (
	"fmt"
	"strings"
)

// Expansion maps an informal term to the searchable values it stands for.
type Expansion struct {
	Term   string
	Field  string
	Values []string
}

// Expansions drive both the rewrite and the extraction prompts.
var Expansions = []Expansion{
	{"tech leaders", "titles", []string{"CTO", "VP of Engineering", "Engineering Director", "Tech Lead", "Head of Engineering"}},
	{"tech bros", "titles", []string{"Software Engineer", "Developer", "Full Stack Developer"}},
	{"engineers", "titles", []string{"Software Engineer", "Backend Engineer", "Frontend Engineer", "Full Stack Engineer"}},
	{"developers", "titles", []string{"Software Developer", "Web Developer", "Full Stack Developer"}},
	{"product people", "titles", []string{"Product Manager", "Senior Product Manager", "Head of Product", "VP of Product"}},
	{"designers", "titles", []string{"UX Designer", "UI Designer", "Product Designer", "Design Lead"}},
	{"big tech", "companies", []string{"Google", "Apple", "Microsoft", "Amazon", "Meta", "Netflix"}},
	{"faang", "companies", []string{"Meta", "Apple", "Amazon", "Netflix", "Google"}},
	{"startups", "companyHeadcount", []string{"1-10", "11-50", "51-200"}},
	{"enterprise", "companyHeadcount", []string{"1001-5000", "5001-10000", "10001+"}},
	{"europe", "locations", []string{"United Kingdom", "Germany", "France", "Netherlands", "Spain", "Italy", "Sweden", "Switzerland"}},
	{"asia", "locations", []string{"Singapore", "Japan", "South Korea", "China", "India", "Hong Kong"}},
	{"southeast asia", "locations", []string{"Singapore", "Malaysia", "Thailand", "Indonesia", "Vietnam"}},
	{"bay area", "locations", []string{"San Francisco", "San Jose", "Palo Alto", "Mountain View"}},
	{"senior", "seniorities", []string{"Senior", "Staff", "Principal", "Lead"}},
	{"junior", "seniorities", []string{"Junior", "Entry Level", "Associate"}},
	{"management", "seniorities", []string{"Manager", "Director", "VP"}},
	{"技术大佬", "titles", []string{"CTO", "VP of Engineering", "Tech Lead"}},
}

// HeadcountBuckets are the only values accepted for companyHeadcount.
var HeadcountBuckets = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1001-5000", "5001-10000", "10001+"}

func expansionTable(fields ...string) string {
	var sb strings.Builder
	for _, e := range Expansions {
		for _, f := range fields {
			if e.Field == f {
				fmt.Fprintf(&sb, "- %q → %s: %s\n", e.Term, e.Field, strings.Join(e.Values, ", "))
			}
		}
	}
	return sb.String()
}

// Example is a few-shot demonstration.
type Example struct {
	Input  string
	Output string
}

func examples(list []Example) string {
	var sb strings.Builder
	sb.WriteString("EXAMPLES:\n")
	for _, ex := range list {
		fmt.Fprintf(&sb, "\nInput: %s\nOutput: %s\n", ex.Input, ex.Output)
	}
	return sb.String()
}

var intentExamples = []Example{
	{`Context: No previous search context. User input: "Find CTOs in Singapore"`, `{"type":"new_search","confidence":0.95,"reasoning":"first query"}`},
	{`Context: Current search filters: titles: ["CTO"]. User input: "also in fintech"`, `{"type":"refine","confidence":0.9,"reasoning":"adds an industry"}`},
	{`Context: Current search filters: locations: ["Singapore"]. User input: "change location to Tokyo"`, `{"type":"modify","confidence":0.95,"reasoning":"replaces the location"}`},
	{`Context: Current search filters: titles: ["CTO"]. User input: "Any location is fine"`, `{"type":"confirm","confidence":0.9,"reasoning":"accepts without location"}`},
	{`Context: Current search filters: titles: ["CTO"]. User input: "不对，重来"`, `{"type":"reject","confidence":0.9,"reasoning":"starts over"}`},
	{`Context: Current search filters: industries: ["AI"], locations: ["Singapore"]. User input: "who are the CTOs at these companies?"`, `{"type":"cross_domain","confidence":0.9,"reasoning":"pivots from companies to people"}`},
}

// Intent classifies an utterance into one of six intents.
var Intent = `You classify the intent of a user talking to a people and company search assistant.

Intents:
- new_search: a completely different search (different roles or criteria)
- refine: adds conditions to the current search ("also", "and", "additionally", "还要", "另外")
- modify: changes one specific condition ("change location to", "instead of", "换成", "改成")
- confirm: accepts the current filters or a suggestion ("yes", "go ahead", "any is fine", "好的", "可以")
- reject: wants to start over ("no, start over", "不对，重来")
- cross_domain: switches between company search and person search

Rules:
1. Adding a location, industry or seniority to an existing search is refine.
2. Changing a single field is modify.
3. Asking about people at previously found companies, or companies of previously found people, is cross_domain.
4. "find companies" / "找公司" while searching people, or "find people" / "找人" while searching companies, is cross_domain.
5. Without any previous context, answer new_search.

` + examples(intentExamples) + `
Reply with one JSON object and nothing else:
{"type": "new_search|refine|modify|confirm|reject|cross_domain", "confidence": 0.0-1.0, "reasoning": "short explanation"}`

// Rewrite expands informal terms into searchable ones.
var Rewrite = `You expand informal or ambiguous search terms into precise, searchable ones.

Expansions:
` + expansionTable("titles", "companies", "companyHeadcount", "locations", "seniorities") + `
Keep terms that are already specific. Do not invent criteria the user did not imply.

Reply with one JSON object and nothing else:
{"originalQuery": "...", "rewrittenQuery": "...", "expansions": [{"original": "...", "expanded": ["..."]}]}`

var extractionExamples = []Example{
	{`"Find CTOs in Singapore"`, `{"filters":{"titles":{"value":["CTO"],"confidence":"DIRECT"},"locations":{"value":["Singapore"],"confidence":"DIRECT"}},"domain":"person"}`},
	{`"tech leaders at startups in Europe"`, `{"filters":{"titles":{"value":["CTO","VP of Engineering","Tech Lead"],"confidence":"GUESS","source":"tech leaders"},"companyHeadcount":{"value":["1-10","11-50","51-200"],"confidence":"GUESS","source":"startups"},"locations":{"value":["United Kingdom","Germany","France"],"confidence":"GUESS","source":"Europe"}},"domain":"person"}`},
	{`"AI startups in Singapore"`, `{"filters":{"industries":{"value":["Artificial Intelligence"],"confidence":"DIRECT"},"companyHeadcount":{"value":["1-10","11-50","51-200"],"confidence":"GUESS","source":"startups"},"locations":{"value":["Singapore"],"confidence":"DIRECT"}},"domain":"company"}`},
	{`"senior engineers with 5+ years of Python"`, `{"filters":{"titles":{"value":["Software Engineer"],"confidence":"GUESS","source":"engineers"},"seniorities":{"value":["Senior"],"confidence":"DIRECT"},"yearsOfExperience":{"value":{"min":5},"confidence":"DIRECT"},"skills":{"value":["Python"],"confidence":"DIRECT"}},"domain":"person"}`},
}

// Extraction turns a query into structured filters.
var Extraction = `You extract structured search filters from queries to a people and company search engine.

Fields:
- titles: job titles
- locations: cities, countries or regions
- industries: industry sectors
- seniorities: Junior, Mid, Senior, Lead, Manager, Director, VP, C-Level
- companyHeadcount: one or more of ` + strings.Join(HeadcountBuckets, ", ") + `
- yearsOfExperience: {"min": N, "max": M}, either bound optional
- skills: technical or professional skills
- companies: specific company names

Confidence: "DIRECT" when the user said it, "GUESS" when you inferred or expanded it. Put the original term in "source" for guesses.

Expansions:
` + expansionTable("titles", "locations", "companyHeadcount", "seniorities") + `
Domain: "person" when looking for people (default), "company" when looking for companies or organizations.

` + examples(extractionExamples) + `
Reply with one JSON object and nothing else:
{"filters": {"<field>": {"value": [...] or {"min": N, "max": M}, "confidence": "DIRECT|GUESS", "source": "..."}}, "domain": "person|company"}`

// Response writes the conversational reply.
var Response = `You are a friendly search assistant helping users find people and companies.

You receive the user's message, the detected intent, the current filters and the completeness analysis. Write a short reply (at most four sentences) that:
- summarizes the filters you understood, noting inferred values
- asks the suggested clarification question when clarification is needed
- otherwise asks whether to run the search with these filters
- answers in the language the user wrote in

Never invent search results and never claim a search has been run.`
