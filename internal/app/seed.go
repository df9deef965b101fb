package app

import (
	"context"

	"quiz-service/internal/domain"
)

// SeedSampleData creates the "Java Basics Quiz" when no quiz exists yet.
// It reports whether anything was created.
func SeedSampleData(ctx context.Context, quizzes *QuizService, questions *QuestionService, repo QuizRepository) (bool, error) {
	count, err := repo.CountQuizzes(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	quiz, err := quizzes.Create(ctx, domain.QuizInput{
		Title:       "Java Basics Quiz",
		Description: "Test your knowledge of Java fundamentals",
		TimeLimit:   30,
	})
	if err != nil {
		return false, err
	}
	_, err = questions.AddQuestion(ctx, quiz.ID, domain.NewQuestion{
		QuestionText: "What is the main method signature in Java?",
		QuestionType: "multiple-choice",
		Options: []domain.OptionInput{
			{OptionText: "public static void main(String[] args)", IsCorrect: true},
			{OptionText: "public void main(String[] args)", IsCorrect: false},
			{OptionText: "static void main(String[] args)", IsCorrect: false},
		},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
