package summarize

// conciseAnswerPrompt asks the model for a short, grounded answer to the
// query using only the given page. The page text is pre-truncated to the
// configured token budget before it is interpolated.
const conciseAnswerPrompt = `You are given a web page found while searching for an answer to a query.

Page title: %s
Page URL: %s
Page snippet: %s

Page content:
%s

Query: %s

Using only the page above, write a concise answer to the query (at most three sentences). If the page does not contain information relevant to the query, summarize in one sentence what the page is about instead. Do not mention the page or these instructions in your answer.`
