package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
)

const datePattern = `\d{1,2}/\d{1,2}/\d{2,4}|\d{1,2}(?:st|nd|rd|th)?\s+[A-Za-z]+(?:\s+\d{4})?|[A-Za-z]+\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?`

var (
	// action: Name - task - deadline: DD/MM/YYYY
	strictActionRegex = regexp.MustCompile(`(?i)action:\s*([A-Z][a-z]+)\s*-\s*(.+?)\s*-\s*deadline:\s*([0-9]{1,2}/[0-9]{1,2}/[0-9]{4})`)
	// action: Name to task; deadline DATE
	directiveActionRegex = regexp.MustCompile(`(?i)action:\s*([A-Z][a-z]+)\s+to\s+([^\n]+?)(?:\s*[;,]?\s*(?:deadline|by|due(?: by)?)\s*:?\s*(` + datePattern + `))?\s*(?:[.;](?:\s|$)|\n|$)`)

	actionLabelRegex = regexp.MustCompile(`(?i)\baction:`)

	actionBlockRegex = regexp.MustCompile(`(?is)\b(?:action items?|tasks?|to-?do):\s*(.+?)(?:\n\s*\n|---|\z)`)
	columnSplitRegex = regexp.MustCompile(`\t+|\s{2,}`)
	digitRegex       = regexp.MustCompile(`\d`)
)

const minBlockTaskLength = 6

// ActionMatcher is a named sentence-level action pattern. Responsible and
// Task are capture group indexes; a Task of 0 keeps the whole sentence as
// the task. The deadline is the first capture group containing a digit.
type ActionMatcher struct {
	Name        string
	Regex       *regexp.Regexp
	Responsible int
	Task        int
}

// ActionMatchers are tried in order per sentence; the first match wins.
var ActionMatchers = []ActionMatcher{
	{
		Name:        "modal",
		Regex:       regexp.MustCompile(`(?i)\b(\w+)\s+(will|should|must|needs to|has to|is to|I'?ll)\s+(.+?)\s+(?:by|before|on|until|deadline:)\s+([^\n.]+)`),
		Responsible: 1,
	},
	{
		Name:        "responsibility",
		Regex:       regexp.MustCompile(`(?i)\b(\w+)\s+(?:is responsible for|will handle|(?:is |was |has been )?assigned to|(?:is |was )?tasked with)\s+(.+?)(?:\s+(?:by|before|on)\s+(` + datePattern + `))?\s*[.!?]?$`),
		Responsible: 1,
		Task:        2,
	},
	{
		Name:        "labeled",
		Regex:       regexp.MustCompile(`(?i)\b(?:action item|task|to-?do):\s*(.+?)\s*[-–]?\s*(?:assigned to|owner:)\s*(\w+)(?:\s+by\s+([^.\n]+))?`),
		Responsible: 2,
		Task:        1,
	},
}

// ExtractActionItems runs the layered action passes: strict "action:" lines,
// directive "action: Name to task" lines, sentence matchers, then an
// "Action Items:" column block. Items are deduplicated on the lowercased
// first 50 characters of the task and capped.
func ExtractActionItems(text string) []minutes.ActionItem {
	var items []minutes.ActionItem

	for _, m := range strictActionRegex.FindAllStringSubmatch(text, -1) {
		items = append(items, minutes.ActionItem{
			Task:        strings.TrimSpace(m[2]),
			Responsible: capitalize(m[1]),
			Deadline:    strings.TrimSpace(m[3]),
			Status:      minutes.StatusPending,
		})
	}

	for _, m := range directiveActionRegex.FindAllStringSubmatch(text, -1) {
		item := minutes.ActionItem{
			Task:        strings.TrimSpace(m[2]),
			Responsible: capitalize(m[1]),
			Deadline:    strings.TrimSpace(m[3]),
			Status:      minutes.StatusPending,
		}
		if item.Deadline == "" {
			item.Deadline = minutes.NotSpecified
		}
		items = append(items, item)
	}

	for _, sentence := range Sentences(text) {
		if actionLabelRegex.MatchString(sentence) {
			continue
		}
		if item, ok := matchActionSentence(sentence); ok {
			items = append(items, item)
		}
	}

	items = append(items, actionBlockItems(text)...)

	return dedupActions(items)
}

func matchActionSentence(sentence string) (minutes.ActionItem, bool) {
	sentence = strings.TrimSpace(sentence)
	for _, am := range ActionMatchers {
		m := am.Regex.FindStringSubmatch(sentence)
		if m == nil {
			continue
		}

		item := minutes.ActionItem{
			Task:        sentence,
			Responsible: minutes.NotSpecified,
			Deadline:    minutes.NotSpecified,
			Status:      minutes.StatusPending,
		}
		if r := strings.TrimSpace(m[am.Responsible]); r != "" {
			item.Responsible = capitalize(r)
		}
		if am.Task > 0 {
			if t := strings.TrimSpace(m[am.Task]); len(t) > 3 {
				item.Task = t
			}
		}
		for _, g := range m[1:] {
			if digitRegex.MatchString(g) {
				item.Deadline = strings.TrimSpace(g)
				break
			}
		}
		return item, true
	}
	return minutes.ActionItem{}, false
}

// actionBlockItems parses an "Action Items:" block whose lines hold task,
// responsible, deadline and status columns separated by tabs or runs of
// spaces. A header row naming "task" and "responsible" is skipped.
func actionBlockItems(text string) []minutes.ActionItem {
	m := actionBlockRegex.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var items []minutes.ActionItem
	for _, line := range strings.Split(strings.TrimSpace(m[1]), "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if line == "" || (strings.Contains(lower, "task") && strings.Contains(lower, "responsible")) {
			continue
		}
		parts := columnSplitRegex.Split(line, -1)
		if len(parts) < 2 {
			continue
		}
		item := minutes.ActionItem{
			Task:        strings.TrimSpace(parts[0]),
			Responsible: strings.TrimSpace(parts[1]),
			Deadline:    minutes.NotSpecified,
			Status:      minutes.StatusPending,
		}
		if len(parts) > 2 {
			item.Deadline = strings.TrimSpace(parts[2])
		}
		if len(parts) > 3 {
			item.Status = minutes.ParseStatus(parts[3])
		}
		if len(item.Task) >= minBlockTaskLength {
			items = append(items, item)
		}
	}
	return items
}

func dedupActions(items []minutes.ActionItem) []minutes.ActionItem {
	out := make([]minutes.ActionItem, 0, len(items))
	seen := make(map[string]bool)
	for _, item := range items {
		key := TaskKey(item.Task)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if len(out) == minutes.MaxActionItems {
			break
		}
	}
	return out
}

// TaskKey is the dedup key of an action task: its first 50 characters,
// lowercased.
func TaskKey(task string) string {
	r := []rune(task)
	if len(r) > 50 {
		r = r[:50]
	}
	return strings.ToLower(string(r))
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r := []rune(strings.TrimSpace(strings.ToLower(s)))
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
