package constant

// IntentClassificationPrompt takes recent history and the user message
const IntentClassificationPrompt = `<system>
You are an intent classifier for a company knowledge assistant.
You do NOT answer questions. You only classify the latest user message.
</system>

<recent_history>
%s
</recent_history>

<user_message>
%s
</user_message>

<intent_definitions>
small_talk: greetings, thanks, goodbyes or bare acknowledgements with no information need
ambiguous: the message has an information need but it is too vague to search (e.g. "tell me about it" with no usable history)
question: anything that asks for information
</intent_definitions>

<subtypes>
greeting | thanks | bye | affirmation | none (use none unless intent is small_talk)
</subtypes>

<rules>
- normalized_question must be a search-ready rewrite of the user message in the SAME language.
- Never summarize, never add facts, never answer.
- Fix typos and spacing only; keep all entities, numbers and constraints.
</rules>

<output_format>
Respond with ONLY valid JSON:
{"intent": "small_talk|ambiguous|question", "subtype": "greeting|thanks|bye|affirmation|none", "normalized_question": "...", "confidence": 0.9}
</output_format>`

// ConfirmationClassifierPrompt takes the proposed question and the user reply
const ConfirmationClassifierPrompt = `The assistant asked the user to confirm this question:
"%s"

The user replied:
"%s"

Did the user CONFIRM the question? Answer with exactly one word: true or false.`

// ClarificationMergePrompt takes the base question and the user's answer to the clarification
const ClarificationMergePrompt = `Combine the original question and the user's clarification into ONE self-contained question.

Original question: "%s"
Clarification: "%s"

Rules:
- Keep the language of the original question.
- Do not answer the question. Do not add facts.
- Output ONLY the merged question, no quotes, no explanation.`

// ContextualizePrompt takes recent history and the follow-up question
const ContextualizePrompt = `<task>
Rewrite the follow-up question into a self-contained question using the conversation.
</task>

<conversation>
%s
</conversation>

<follow_up>
%s
</follow_up>

<rules>
- Resolve pronouns and implied subjects from the conversation.
- Keep the language of the follow-up question.
- If the follow-up is already self-contained, return it unchanged.
- Never answer the question.
</rules>

<output_format>
Respond with ONLY valid JSON:
{"enhanced_question": "...", "topic": "short topic", "confidence": 0.8}
</output_format>`

// RefineQuestionPrompt takes the question the knowledge base could not answer
const RefineQuestionPrompt = `Rewrite this question so it is clearer and more specific for searching a company knowledge base.
Keep the same language and meaning. Do not answer it.
Output ONLY the rewritten question.

Question: "%s"`

// ClarificationQuestionPrompt takes the question that could not be answered
const ClarificationQuestionPrompt = `The user asked: "%s"
No source produced a confident answer. Write ONE short follow-up question (max 25 words) asking the user for the missing detail.
Use the same language as the user. Output ONLY the follow-up question.`

// Answer generation system prompts
const (
	GroundedAnswerSystemPrompt = `You are a company knowledge assistant.
Answer ONLY from the provided references. If the references do not contain the answer, say you do not know.
Answer in the language of the question, in 2-6 sentences, and cite references as [N].`

	GeneralAnswerSystemPrompt = `You are a helpful assistant. Answer from your own general knowledge.
Answer in the language of the question. Be concise and factual. If you are not sure, say so.`

	WebAnswerSystemPrompt = `You are a research assistant. Answer ONLY from the provided web search results.
Answer in the language of the question and cite results as [N]. If the results do not answer the question, say you do not know.`

	TabularAnswerSystemPrompt = `You are a data analyst. Answer the question using ONLY the table provided.
Show the figures you used. If the table cannot answer the question, say you do not know.`
)

// GroundingSelfAssessmentPrompt takes references, question and answer
const GroundingSelfAssessmentPrompt = `<references>
%s
</references>

<question>%s</question>
<answer>%s</answer>

Rate how much of the answer is directly supported by the references, from 0.0 (nothing) to 1.0 (everything).
Respond with ONLY valid JSON: {"grounding": 0.0}`
