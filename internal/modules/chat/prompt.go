package chat

import (
	"fmt"
	"regexp"
	"strings"
)

var summaryTag = regexp.MustCompile(`(?s)<summary>(.*?)</summary>`)

// SplitSummary pulls the first <summary> block out of a model reply and
// returns the reply without any summary blocks.
func SplitSummary(reply string) (visible, summary string) {
	if m := summaryTag.FindStringSubmatch(reply); m != nil {
		summary = strings.TrimSpace(m[1])
	}
	visible = strings.TrimSpace(summaryTag.ReplaceAllString(reply, ""))
	return visible, summary
}

// RedirectSummary is stored in place of a model summary for canned replies.
func RedirectSummary(query string, kind Kind) string {
	reason := "off-topic"
	if kind == KindInappropriate {
		reason = "inappropriate"
	}
	return fmt.Sprintf("Q: %s A: Redirected %s question", query, reason)
}

type PromptInput struct {
	Grade    string
	Subject  string
	Topic    string
	Query    string
	Previous []string
}

func TutorSystemPrompt(grade, subject, topic string) string {
	focus := ""
	if topic != "" {
		focus = ", with a focus on " + topic
	}
	return strings.Join([]string{
		fmt.Sprintf("You are a warm and patient %s tutor for school students in grades 6 to 12.", subject),
		fmt.Sprintf("You are helping a %s student with %s%s.", gradeLabel(grade), subject, focus),
		"",
		"How to answer:",
		"- Acknowledge the question, then explain step by step in language suited to the student's grade.",
		"- Use everyday examples and analogies; offer a memory trick when it helps.",
		"- Keep the tone encouraging. A few emojis are fine.",
		"- Finish with a short question or challenge that invites the student to keep exploring.",
		"",
		"Boundaries:",
		"- Never produce adult, violent or otherwise harmful content.",
		fmt.Sprintf("- If the student drifts away from %s, reply kindly and guide them back.", subject),
		"",
		"After the answer, append exactly one line in this form:",
		"<summary>Q: <the student's question> A: <one-sentence summary of your answer></summary>",
	}, "\n")
}

func TutorUserPrompt(in PromptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Grade: %s\n", gradeLabel(in.Grade))
	fmt.Fprintf(&b, "Subject: %s\n", in.Subject)
	if in.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	}
	if len(in.Previous) == 0 {
		b.WriteString("Earlier in this subject: nothing yet, this is a fresh start.\n")
	} else {
		b.WriteString("Earlier in this subject:\n")
		for _, s := range in.Previous {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	fmt.Fprintf(&b, "\nQuestion: %q\n", in.Query)
	return b.String()
}

func FollowUpSystemPrompt(grade, subject string) string {
	return strings.Join([]string{
		fmt.Sprintf("You are a patient %s tutor helping a %s student.", subject, gradeLabel(grade)),
		"The student wants more help with something you already explained.",
		"- Praise them for asking again.",
		"- Explain it a different way: new examples, smaller steps, or a fresh analogy.",
		"- Check understanding with one quick question at the end.",
		"",
		"After the answer, append exactly one line in this form:",
		"<summary>Q: <the student's question> A: <one-sentence summary of your answer></summary>",
	}, "\n")
}

func FollowUpUserPrompt(prevQuery, prevResponse, query string) string {
	return fmt.Sprintf(
		"Earlier question: %s\nEarlier answer: %s\n\nWhat the student asks now: %s\n\nGive a clearer, more detailed explanation of the earlier topic.",
		prevQuery, prevResponse, query,
	)
}

func gradeLabel(grade string) string {
	if strings.TrimSpace(grade) == "" {
		return "middle or high school"
	}
	return grade
}
