package splunk

import "strings"

// MaxSubjectLength is the longest subject, in runes, derived from a search
// name. Longer names keep their first MaxSubjectLength-3 runes plus "...".
const MaxSubjectLength = 60

const (
	ellipsis    = "..."
	bodyHeading = "Splunk alert from saved search"
)

// FormattedAlert is the chat rendering of one Splunk alert.
type FormattedAlert struct {
	Subject string
	Body    string
}

// Format renders p as a chat message. A non-empty topic is used as the
// subject verbatim; otherwise the subject is derived from the search name.
func Format(p Payload, topic string) FormattedAlert {
	searchName := p.SearchName.Or(FieldSearchName)

	subject := topic
	if subject == "" {
		subject = truncateSubject(searchName)
	}

	var b strings.Builder
	b.WriteString(bodyHeading)
	b.WriteString("\n[")
	b.WriteString(searchName)
	b.WriteString("](")
	b.WriteString(p.ResultsLink.Or(FieldResultsLink))
	b.WriteString(")\nhost: ")
	b.WriteString(p.Host.Or(FieldHost))
	b.WriteString("\nsource: ")
	b.WriteString(p.Source.Or(FieldSource))
	b.WriteString("\n\nraw: ")
	b.WriteString(p.Raw.Or(FieldRaw))

	return FormattedAlert{Subject: subject, Body: b.String()}
}

func truncateSubject(s string) string {
	r := []rune(s)
	if len(r) < MaxSubjectLength {
		return s
	}
	return string(r[:MaxSubjectLength-len(ellipsis)]) + ellipsis
}
