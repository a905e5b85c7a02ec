package answer

import "strings"

const (
	docSeparator      = "\n\n-----\n"
	questionSeparator = "\n\n-----\n\nQUESTION: "
)

// BuildPrompt assembles a budget-bounded prompt from the instruction, the
// retrieved documents, and the question. Documents are taken in rank order;
// the first one that would push the running total (instruction + documents +
// question) past the budget stops further inclusion — first-fit-in-order,
// not best-fit. The question is always appended; the budget gates documents
// only.
func BuildPrompt(question string, docs []string, instruction string, budget int) string {
	var b strings.Builder
	b.WriteString(instruction)
	for _, doc := range docs {
		if b.Len()+len(docSeparator)+len(doc)+len(question) > budget {
			break
		}
		b.WriteString(docSeparator)
		b.WriteString(doc)
	}
	b.WriteString(questionSeparator)
	b.WriteString(question)
	return b.String()
}
