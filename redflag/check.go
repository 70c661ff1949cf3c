package redflag

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// hedging matches language that signals a guess rather than an answer.
var hedging = compileAll(
	`\bi(?:'m| am) not (?:entirely |completely |totally )?(?:sure|certain)\b`,
	`\bi think (?:it )?might\b`,
	`\bprobably\b.*\bmaybe\b`,
	`\bi(?:'m| am) (?:just )?guessing\b`,
	`\bthis (?:could|might|may) be wrong\b`,
	`\bi don't (?:really )?know\b`,
	`\bi'm uncertain\b`,
	`\bhard to say\b`,
)

// offRails matches output where the model stopped working on the task.
var offRails = compileAll(
	`(?:as an ai|as a language model)`,
	`i (?:cannot|can't|am unable to) (?:actually |really )?(?:do|perform|execute)`,
	`(?:let me|allow me to) (?:think|consider|reflect)`,
	`(?:wait|hold on|actually),? (?:let me|i need to) (?:reconsider|rethink)`,
)

var codePattern = regexp.MustCompile(`(?:def |class |function |const |let |var |import |from )`)

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// minRepetitionWords is the number of words below which repetition is not checked.
const minRepetitionWords = 20

func checkLength(text string, minTokens, maxTokens int, charsPerToken float64) *Reason {
	tokens := float64(utf8.RuneCountInString(text)) / charsPerToken
	if maxTokens > 0 && tokens > float64(maxTokens) {
		return &Reason{TooLong, fmt.Sprintf("~%d tokens, max %d", int(tokens), maxTokens)}
	}
	if minTokens > 0 && tokens < float64(minTokens) {
		return &Reason{TooShort, fmt.Sprintf("~%d tokens, min %d", int(tokens), minTokens)}
	}
	return nil
}

func checkFormat(text string, format Format, requiredFields []string) *Reason {
	switch format {
	case FormatJSON:
		return checkJSON(strings.TrimSpace(text), requiredFields)
	case FormatCode:
		if !strings.Contains(text, "```") && !codePattern.MatchString(text) {
			return &Reason{WrongFormat, "expected code but found no code block or keywords"}
		}
	case FormatSingleLine:
		if strings.Contains(strings.TrimSpace(text), "\n") {
			return &Reason{WrongFormat, "expected a single line"}
		}
	}
	return nil
}

func checkJSON(text string, requiredFields []string) *Reason {
	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		return &Reason{WrongFormat, "expected JSON but response does not start with { or ["}
	}
	if !gjson.Valid(text) {
		return &Reason{WrongFormat, "invalid JSON"}
	}
	doc := gjson.Parse(text)
	if len(requiredFields) == 0 || !doc.IsObject() {
		return nil
	}
	// keys are collected directly so that field names are never read as paths
	present := make(map[string]bool)
	doc.ForEach(func(key, _ gjson.Result) bool {
		present[key.String()] = true
		return true
	})
	var missing []string
	for _, f := range requiredFields {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &Reason{WrongFormat, fmt.Sprintf("missing required JSON fields: %s", strings.Join(missing, ", "))}
	}
	return nil
}

func checkPatterns(lower string, flag Flag, patterns []*regexp.Regexp) *Reason {
	for _, re := range patterns {
		if re.MatchString(lower) {
			return &Reason{flag, fmt.Sprintf("matches pattern '%s'", re)}
		}
	}
	return nil
}

func checkRepetition(lower string, threshold float64) *Reason {
	words := strings.Fields(lower)
	if len(words) < minRepetitionWords {
		return nil
	}
	trigrams := make(map[string]struct{})
	total := len(words) - 2
	for i := 0; i < total; i++ {
		trigrams[strings.Join(words[i:i+3], " ")] = struct{}{}
	}
	unique := float64(len(trigrams)) / float64(total)
	if unique < 1-threshold {
		return &Reason{Repetitive, fmt.Sprintf("%.1f%% repeated trigrams", (1-unique)*100)}
	}
	return nil
}
