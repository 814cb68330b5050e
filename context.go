package retrieval

import (
	"fmt"
	"strings"

	"github.com/hanlease/retrieval-core/prompts"
)

const extraContextMaxChars = 12000

// maxContractTokens additionally bounds SECTION 0 by token count when
// a TokenCounter is configured, on top of the character cap: the
// character cap alone can still admit a token-dense contract excerpt
// (run-on Hangul compounds, no spacing) that would blow past the
// generator's own context window.
const maxContractTokens = 3000

// formatContext renders the final Document list into the structured
// context string the generator consumes: an optional SECTION 0 block
// carrying the caller's contract text, followed by SECTION 1/2/3,
// partitioned by priorityToSection and omitted when empty.
func (c *Core) formatContext(docs []Document, extraContext string) string {
	var b strings.Builder

	if strings.TrimSpace(extraContext) != "" {
		b.WriteString(prompts.Section0Header)
		b.WriteString("\n")
		section0 := truncateText(extraContext, extraContextMaxChars)
		if c.tokenCounter != nil {
			section0 = truncateByTokens(section0, c.tokenCounter, maxContractTokens)
		}
		b.WriteString(section0)
		b.WriteString("\n\n")
	}

	sections := [3][]Document{}
	for _, d := range docs {
		s := priorityToSection(priorityOf(d))
		sections[s-1] = append(sections[s-1], d)
	}

	headers := [3]string{prompts.Section1Header, prompts.Section2Header, prompts.Section3Header}
	for i, header := range headers {
		if len(sections[i]) == 0 {
			continue
		}
		b.WriteString(header)
		b.WriteString("\n")
		for _, d := range sections[i] {
			b.WriteString(c.formatReferenceLine(d))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// formatReferenceLine renders one document for inclusion in the
// context body: "- {src_title} {article} - {body}", body truncated
// to rerank_doc_max_chars with newlines flattened to spaces.
func (c *Core) formatReferenceLine(d Document) string {
	srcTitle := metaString(d.Metadata, MetaSrcTitle)
	article := metaString(d.Metadata, MetaArticle)
	body := flatten(truncateText(d.Content, c.cfg.RerankDocMaxChars))
	return fmt.Sprintf("- %s %s - %s", srcTitle, article, body)
}

// formatReferenceShort renders one document for a UI-facing reference
// list: "{src_title} {article}", with case_no substituting for
// article on documents whose source is case.
func formatReferenceShort(d Document, source SourceIndex) string {
	srcTitle := metaString(d.Metadata, MetaSrcTitle)
	article := metaString(d.Metadata, MetaArticle)
	if source == SourceCase {
		if caseNo := metaString(d.Metadata, MetaCaseNo); caseNo != "" {
			article = caseNo
		}
	}
	return strings.TrimSpace(srcTitle + " " + article)
}

// formatReferences builds the short reference list parallel to docs,
// using sourceOf to recover each document's original source (priority
// alone cannot tell a rule apart from a case once both land in
// SECTION 2/3).
func formatReferences(docs []Document, sourceOf []SourceIndex) []string {
	refs := make([]string, 0, len(docs))
	for i, d := range docs {
		var src SourceIndex
		if i < len(sourceOf) {
			src = sourceOf[i]
		}
		refs = append(refs, formatReferenceShort(d, src))
	}
	return refs
}
