package http

import (
	"github.com/go-playground/validator/v10"
)

// fieldMessages maps "Field.tag" (or just "Field" for any tag) to the
// message reported for a failed constraint.
var fieldMessages = map[string]string{
	"Title":                "Quiz title must be between 3 and 100 characters.",
	"Description.required": "Quiz description cannot be blank.",
	"Description":          "Description cannot exceed 255 characters.",
	"TimeLimit.required":   "Time limit is required.",
	"TimeLimit":            "Time limit must be at least 3 minutes.",

	"QuestionText":        "Question text must be between 5 and 500 characters.",
	"QuestionType":        "Question type is required.",
	"Options":             "Options cannot be null.",
	"OptionText.required": "Option text cannot be blank.",
	"OptionText":          "Option text must be between 1 and 200 characters.",
	"IsCorrect":           "isCorrect field is required.",

	"QuizID":               "Quiz ID is required.",
	"StudentName.required": "Student name is required.",
	"StudentName":          "Student name must be between 3 and 100 characters.",
	"QuestionID":           "Question ID is required.",
	"SelectedOptionID":     "Selected option ID is required.",

	"Username.required": "Username is required.",
	"Username":          "Username must be between 3 and 100 characters.",
	"Email":             "Email must be a valid email address.",
	"Password.required": "Password is required.",
	"Password.max":      "Password cannot exceed 72 characters.",
	"Password":          "Password must be at least 6 characters.",
}

func validationMessages(errs validator.ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		out = append(out, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.StructField()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := fieldMessages[fe.StructField()]; ok {
		return msg
	}
	return fe.Error()
}
