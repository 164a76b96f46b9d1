package llm

const classifierPrompt = `Classify the user's question based on the document content.

Categories:
- "rag": Question is answerable or related to the uploaded document.
- "weather": Question is about temperature, humidity, or climate.
- "unknown": If neither applies.

Logic:
If question is NOT about weather:
→ Check if it can be answered using the document context.
→ If yes, output "rag".
→ Otherwise, output "unknown".

Respond with exactly one word: rag, weather or unknown.

Document Context:
%s`

const locationPrompt = `You are a location extraction expert for weather queries.

RULES:
1. Extract city and state from the user's weather question.
2. If both city and state are mentioned, use them as-is.
3. If only a city is mentioned, identify its state if possible.
4. If ONLY a state or region is mentioned, set "state" to it and "city" to null.
5. Use null if information cannot be determined.
6. Return ONLY valid JSON: {"city": "...", "state": "..."}

Examples:
"Weather in Mumbai?" → {"city": "Mumbai", "state": "Maharashtra"}
"Temperature in Jaipur" → {"city": "Jaipur", "state": "Rajasthan"}
"Temperature in Kolkata, West Bengal" → {"city": "Kolkata", "state": "West Bengal"}
"What is the weather in Rajasthan?" → {"city": null, "state": "Rajasthan"}
"Is it going to rain?" → {"city": null, "state": null}

Return ONLY the JSON object, nothing else.`

const answerPrompt = "Answer ONLY from the provided context. " +
	"If the answer cannot be found in the context, clearly state that you don't know."

const sectionSummaryPrompt = `You are an expert document analyzer.
Summarize the following document section concisely but thoroughly.
Focus on main topics, key concepts, and important details.

Document Section:
%s

Provide a structured summary covering:
- Main Topics
- Key Concepts
- Important Details
- Purpose/Context

Keep it concise but informative (150-200 words).`

const combineSummaryPrompt = `You are creating a comprehensive overview of a document.

Combine the following partial summaries into a single, cohesive document overview.
Keep it concise (300-400 words) but information-rich and well-structured.

Partial Summaries:
%s

Create a final overview with these sections:
- Document Title/Subject: What is this document about?
- Main Themes: Core topics covered
- Key Concepts: Important ideas, definitions, or frameworks
- Purpose/Use Cases: What is this document for? Who would use it?`
