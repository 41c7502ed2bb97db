package summarizer

import "strings"

const concisePromptTemplate = `Write a concise summary of the following:


"{text}"


CONCISE SUMMARY:`

const refinePromptTemplate = `Your job is to produce a final summary.
We have provided an existing summary up to a certain point: {existing_answer}
We have the opportunity to refine the existing summary (only if needed) with some more context below.
------------
{text}
------------
Given the new context, refine the original summary.
If the context isn't useful, return the original summary.`

func concisePrompt(text string) string {
	return strings.Replace(concisePromptTemplate, "{text}", text, 1)
}

func refinePrompt(existing, text string) string {
	r := strings.NewReplacer("{existing_answer}", existing, "{text}", text)
	return r.Replace(refinePromptTemplate)
}
