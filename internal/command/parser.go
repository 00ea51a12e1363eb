package command

import (
	"regexp"
	"strings"
)

// Confidence reported for each matching stage.
const (
	ConfidenceExact     = 1.0
	ConfidencePartial   = 0.85
	ConfidenceHeuristic = 0.7
	ConfidenceSearch    = 0.8
	ConfidenceHelp      = 0.9
)

// Match stages, in evaluation order.
const (
	StageExact     = "exact"
	StagePartial   = "partial"
	StageHeuristic = "heuristic"
	StageSearch    = "search"
	StageHelp      = "help"
)

// Result is a parsed utterance.
type Result struct {
	Action     ActionID `json:"action"`
	Phrase     string   `json:"phrase"`
	Params     Params   `json:"params"`
	Confidence float64  `json:"confidence"`
	Stage      string   `json:"stage"`
}

// rule reclassifies an utterance that no table phrase overlaps.
type rule struct {
	name   string
	match  func(cmd string) bool
	phrase string
}

// Overrides are evaluated in order and the first match wins, so an utterance
// containing both "compose" and "search" resolves to compose.
var overrides = []rule{
	{name: "email-to", match: containsAll("email", "to"), phrase: "send email to"},
	{name: "compose", match: containsAny("compose", "write"), phrase: "compose email"},
	{name: "search", match: containsAny("search", "find"), phrase: "search emails"},
}

var emailWordRe = regexp.MustCompile(`\bemails?\b`)

// Parser resolves utterances against a command table.
type Parser struct {
	table *Table
}

// NewParser creates a parser over table.
func NewParser(table *Table) *Parser {
	return &Parser{table: table}
}

// Table returns the table the parser matches against.
func (p *Parser) Table() *Table {
	return p.table
}

// Process parses an utterance. It reports false when nothing matched.
func (p *Parser) Process(utterance string) (Result, bool) {
	cmd := strings.ToLower(strings.TrimSpace(utterance))
	if cmd == "" {
		return Result{}, false
	}

	if entry, ok := p.table.Lookup(cmd); ok {
		return p.resolve(entry, utterance, ConfidenceExact, StageExact), true
	}

	for _, entry := range p.table.primary {
		if strings.Contains(cmd, entry.Phrase) || strings.Contains(entry.Phrase, cmd) {
			return p.resolve(entry, utterance, ConfidencePartial, StagePartial), true
		}
	}

	for _, r := range overrides {
		if !r.match(cmd) {
			continue
		}
		if entry, ok := p.table.Lookup(r.phrase); ok {
			return p.resolve(entry, utterance, ConfidenceHeuristic, StageHeuristic), true
		}
	}

	for _, entry := range p.table.search {
		if !strings.Contains(cmd, entry.Phrase) {
			continue
		}
		query := strings.Replace(cmd, entry.Phrase, "", 1)
		query = strings.Join(strings.Fields(emailWordRe.ReplaceAllString(query, "")), " ")
		if query == "" {
			continue
		}
		return Result{
			Action:     entry.Action,
			Phrase:     entry.Phrase,
			Params:     Params{Query: query},
			Confidence: ConfidenceSearch,
			Stage:      StageSearch,
		}, true
	}

	if strings.Contains(cmd, "help") && strings.Contains(cmd, "email") {
		res := Result{Action: EmailHelp, Confidence: ConfidenceHelp, Stage: StageHelp}
		for _, entry := range p.table.help {
			if strings.Contains(cmd, entry.Phrase) {
				res.Phrase = entry.Phrase
				res.Params.Topic = entry.Topic
				break
			}
		}
		return res, true
	}

	return Result{}, false
}

func (p *Parser) resolve(entry Entry, utterance string, confidence float64, stage string) Result {
	return Result{
		Action:     entry.Action,
		Phrase:     entry.Phrase,
		Params:     Extract(entry.Action, entry.Phrase, utterance),
		Confidence: confidence,
		Stage:      stage,
	}
}

func containsAll(words ...string) func(string) bool {
	return func(cmd string) bool {
		for _, w := range words {
			if !strings.Contains(cmd, w) {
				return false
			}
		}
		return true
	}
}

func containsAny(words ...string) func(string) bool {
	return func(cmd string) bool {
		for _, w := range words {
			if strings.Contains(cmd, w) {
				return true
			}
		}
		return false
	}
}
