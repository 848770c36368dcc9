package ai

import "strings"

const rubricInstructions = `Please evaluate based on these criteria:
1. Content Accuracy (0-3 points)
   - Key concepts and facts
   - Correctness of information
   - Understanding of the topic

2. Completeness (0-2 points)
   - Coverage of required points
   - Depth of explanation
   - Missing elements

3. Clarity and Organization (0-2 points)
   - Structure and flow
   - Language clarity
   - Logical presentation

4. Technical Accuracy (0-3 points)
   - Use of correct terminology
   - Technical precision
   - Application of concepts

IMPORTANT: You must respond with ONLY a valid JSON object in the following format, with no additional text or explanation:
{
  "score": <number between 0 and 10>,
  "feedback": {
    "contentAccuracy": "<brief feedback about content accuracy>",
    "completeness": "<brief feedback about completeness>",
    "clarity": "<brief feedback about clarity and organization>",
    "technicalAccuracy": "<brief feedback about technical accuracy>"
  },
  "suggestions": [
    "<suggestion 1>",
    "<suggestion 2>",
    "<suggestion 3>"
  ]
}`

// BuildRubricPrompt renders the grading prompt. The same input always yields the same prompt.
func BuildRubricPrompt(input RubricInput) string {
	builder := strings.Builder{}
	builder.WriteString("You are an expert teacher evaluating a student's answer. ")
	builder.WriteString("Compare the model answer with the student's answer and provide a detailed evaluation.\n\n")
	builder.WriteString("Model Answer: ")
	builder.WriteString(input.ModelAnswer)
	builder.WriteString("\n\nStudent Answer: ")
	builder.WriteString(input.StudentAnswer)
	builder.WriteString("\n\n")
	builder.WriteString(rubricInstructions)
	return builder.String()
}
