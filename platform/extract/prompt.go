package extract

import (
	"fmt"
	"regexp"
)

// systemPrompt frames every completion request made by this package
const systemPrompt = "You are an AI that specializes in generating detailed and accurate expense reports."

/*
exampleFieldsJSON is embedded in the extraction prompt as the shape the model
must fill in. Key order matches ExpenseFieldNames
*/
const exampleFieldsJSON = `{
  "Profile": "...",
  "Business_purpose_description": "...",
  "Expense_country": "...",
  "Receipts_currency": "...",
  "Total_amount": "...",
  "Payment_date": "...",
  "Payment_method": "...",
  "Number_of_participants": "...",
  "Category": "Travel"
}`

const extractionInstructions = "Human: You are an AI specialized in generating detailed and accurate expense reports. " +
	"Please extract the following fields from the provided text and return a single JSON object:\n" +
	"1. Profile\n" +
	"2. Business purpose/description\n" +
	"3. Expense country\n" +
	"4. Receipts currency\n" +
	"5. Total amount\n" +
	"6. Payment date\n" +
	"7. Payment method\n" +
	"8. Number of participants\n" +
	"9. Category\n\n"

// buildExtractionPrompt renders the full user prompt for one recognized receipt
func buildExtractionPrompt(fileName string, receiptText string) string {
	return extractionInstructions +
		"The response should be in JSON format as follows (note that this is just an template for you to use):\n" +
		exampleFieldsJSON + "\n\n" +
		"Please ensure the response is well-structured and contains all the fields requested. " +
		"If any field is missing, return it with a null value.\n\n" +
		"File Name: " + fileName + "\n" +
		receiptText + "\n" +
		"Lastly, please ensure that the returned output is always JSON.\n" +
		"Assistant:"
}

// Models wrap JSON in prose or code fences often enough that the object has
// to be fished out of the completion
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

func salvageJSON(completion string) (string, error) {
	match := jsonObjectPattern.FindString(completion)
	if match == "" {
		return "", fmt.Errorf("No valid JSON object found in the model's response")
	}
	return match, nil
}
