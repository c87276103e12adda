// Package prompt holds the instructions sent to LLM classification backends.
package prompt

import "fmt"

// SystemInstruction describes the reviewer role and the report format
const SystemInstruction = `You are an email security analyst. You decide whether an email is a phishing attempt or a legitimate message.

Answer with exactly these three lines and nothing else:
Classification: Phishing or Legitimate
Confidence: a whole number from 0 to 100
Explanation: one or two sentences naming the signals you relied on`

const userFormat = `Analyze the following email.

---
%s
---`

// Build returns the user prompt for the composed email text
func Build(emailText string) string {
	return fmt.Sprintf(userFormat, emailText)
}

// Combined returns the system instruction and user prompt as a single text,
// for backends that accept only one prompt
func Combined(emailText string) string {
	return SystemInstruction + "\n\n" + Build(emailText)
}
