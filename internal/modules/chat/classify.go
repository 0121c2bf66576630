package chat

import (
	"strings"
	"unicode"
)

type Kind int

const (
	KindNormal Kind = iota
	KindInappropriate
	KindFollowUp
	KindOffTopic
)

func (k Kind) String() string {
	switch k {
	case KindInappropriate:
		return "inappropriate"
	case KindFollowUp:
		return "follow_up"
	case KindOffTopic:
		return "off_topic"
	default:
		return "normal"
	}
}

// Classifier decides how a tutoring query is handled before any model call.
// Checks run in a fixed order: denylist, follow-up, off-topic.
type Classifier struct {
	deny      map[string]bool
	followUp  []string
	personal  []string
	casual    []string
	otherSubj []string
}

func NewClassifier(c *Catalog) *Classifier {
	cl := &Classifier{deny: map[string]bool{}}
	for _, w := range c.Denylist {
		if w = normalize(w); w != "" {
			cl.deny[w] = true
		}
	}
	cl.followUp = normalizeAll(c.FollowUpIndicators)
	cl.personal = normalizeAll(c.PersonalQuestions)
	cl.casual = normalizeAll(c.CasualConversation)
	cl.otherSubj = normalizeAll(c.OtherSubjects)
	return cl
}

func (cl *Classifier) Classify(query, subject, topic string) Kind {
	q := normalize(query)
	switch {
	case cl.IsInappropriate(q):
		return KindInappropriate
	case cl.IsFollowUp(q):
		return KindFollowUp
	case cl.IsOffTopic(q, subject, topic):
		return KindOffTopic
	}
	return KindNormal
}

// IsInappropriate matches denylisted words as whole tokens or their regular
// inflections ("guns", "killing", "hated"). Words that merely contain a
// denylisted word ("skill", "hello") do not match.
func (cl *Classifier) IsInappropriate(query string) bool {
	for _, tok := range strings.Fields(normalize(query)) {
		if cl.deny[tok] {
			return true
		}
		for _, stem := range stems(tok) {
			if cl.deny[stem] {
				return true
			}
		}
	}
	return false
}

var inflections = []string{"'s", "s", "es", "ed", "d", "ing", "ings", "er", "ers"}

// stems lists the base words tok could be a regular inflection of, covering
// doubled final consonants ("stabbing") and a dropped final e ("hating").
func stems(tok string) []string {
	var out []string
	for _, suf := range inflections {
		base, ok := strings.CutSuffix(tok, suf)
		if !ok || len(base) < minConnectLen {
			continue
		}
		out = append(out, base)
		if suf == "d" {
			continue
		}
		if n := len(base); n >= 2 && base[n-1] == base[n-2] {
			out = append(out, base[:n-1])
		}
		if suf != "s" && suf != "'s" {
			out = append(out, base+"e")
		}
	}
	return out
}

func (cl *Classifier) IsFollowUp(query string) bool {
	return containsAnyPhrase(normalize(query), cl.followUp)
}

func (cl *Classifier) IsOffTopic(query, subject, topic string) bool {
	q := normalize(query)
	subj := normalize(subject)
	top := normalize(topic)

	if containsAnyPhrase(q, cl.personal) || containsAnyPhrase(q, cl.casual) {
		return true
	}

	mentionsSubject := subj != "" && containsPhrase(q, subj)
	connected := top != "" && (containsPhrase(q, top) || wordsConnect(q, top))

	if !mentionsSubject && !connected && containsAnyPhrase(q, cl.otherSubj) {
		return true
	}
	if top != "" && !mentionsSubject && !connected {
		return true
	}
	return false
}

// normalize lowercases s, folds typographic apostrophes and collapses every
// run of characters other than letters, digits, apostrophes and hyphens into one space.
func normalize(s string) string {
	s = strings.NewReplacer("’", "'", "‘", "'").Replace(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = normalize(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// containsPhrase reports whether phrase occurs in text on word boundaries.
// Both arguments must already be normalized.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}

func containsAnyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if containsPhrase(text, p) {
			return true
		}
	}
	return false
}

// minConnectLen keeps short filler words ("a", "is") from linking unrelated text.
const minConnectLen = 3

// wordsConnect reports whether any query word and topic word contain one another.
func wordsConnect(query, topic string) bool {
	for _, tw := range strings.Fields(topic) {
		if len(tw) < minConnectLen {
			continue
		}
		for _, qw := range strings.Fields(query) {
			if len(qw) < minConnectLen {
				continue
			}
			if strings.Contains(qw, tw) || strings.Contains(tw, qw) {
				return true
			}
		}
	}
	return false
}
