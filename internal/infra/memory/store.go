package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-service/internal/domain"
)

// Store is an in-memory implementation of every app repository. One RWMutex
// guards all tables, so each call is atomic.
type Store struct {
	mu sync.RWMutex

	nextID    int64
	quizzes   map[int64]domain.Quiz
	questions map[int64]domain.Question
	options   map[int64]domain.Option
	attempts  map[int64]domain.Attempt
	students  map[int64]domain.Student
}

func NewStore() *Store {
	return &Store{
		quizzes:   make(map[int64]domain.Quiz),
		questions: make(map[int64]domain.Question),
		options:   make(map[int64]domain.Option),
		attempts:  make(map[int64]domain.Attempt),
		students:  make(map[int64]domain.Student),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Quizzes

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz.ID = s.id()
	s.quizzes[quiz.ID] = quiz
	return quiz, nil
}

func (s *Store) GetQuiz(_ context.Context, id int64) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		out = append(out, quiz)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.quizzes[quiz.ID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz.CreatedAt = existing.CreatedAt
	s.quizzes[quiz.ID] = quiz
	return quiz, nil
}

func (s *Store) DeleteQuiz(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	for qid, question := range s.questions {
		if question.QuizID == id {
			s.deleteQuestionLocked(qid)
		}
	}
	for aid, attempt := range s.attempts {
		if attempt.QuizID == id {
			delete(s.attempts, aid)
		}
	}
	delete(s.quizzes, id)
	return nil
}

func (s *Store) CountQuizzes(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quizzes), nil
}

// Questions

func (s *Store) CreateQuestion(_ context.Context, quizID int64, in domain.NewQuestion) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.Question{}, domain.ErrQuizNotFound
	}
	question := domain.Question{
		ID:           s.id(),
		QuizID:       quizID,
		QuestionText: in.QuestionText,
		QuestionType: in.QuestionType,
	}
	s.questions[question.ID] = question
	for _, opt := range in.Options {
		option := domain.Option{
			ID:         s.id(),
			QuestionID: question.ID,
			OptionText: opt.OptionText,
			IsCorrect:  opt.IsCorrect,
		}
		s.options[option.ID] = option
		question.Options = append(question.Options, option)
	}
	return question, nil
}

func (s *Store) GetQuestion(_ context.Context, id int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	question.Options = s.optionsLocked(id)
	return question, nil
}

func (s *Store) ListQuestions(_ context.Context, quizID int64) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.questionsLocked(quizID)
	for i := range out {
		out[i].Options = s.optionsLocked(out[i].ID)
	}
	return out, nil
}

func (s *Store) DeleteQuestion(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	s.deleteQuestionLocked(id)
	return nil
}

func (s *Store) deleteQuestionLocked(id int64) {
	for oid, option := range s.options {
		if option.QuestionID == id {
			delete(s.options, oid)
		}
	}
	delete(s.questions, id)
}

func (s *Store) questionsLocked(quizID int64) []domain.Question {
	out := make([]domain.Question, 0)
	for _, question := range s.questions {
		if question.QuizID == quizID {
			out = append(out, question)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) optionsLocked(questionID int64) []domain.Option {
	out := make([]domain.Option, 0)
	for _, option := range s.options {
		if option.QuestionID == questionID {
			out = append(out, option)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Options

func (s *Store) GetOption(_ context.Context, id int64) (domain.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	option, ok := s.options[id]
	if !ok {
		return domain.Option{}, domain.ErrOptionNotFound
	}
	return option, nil
}

func (s *Store) UpdateOption(_ context.Context, option domain.Option) (domain.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.options[option.ID]
	if !ok {
		return domain.Option{}, domain.ErrOptionNotFound
	}
	option.QuestionID = existing.QuestionID
	s.options[option.ID] = option
	return option, nil
}

func (s *Store) DeleteOption(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.options[id]; !ok {
		return domain.ErrOptionNotFound
	}
	delete(s.options, id)
	return nil
}

// LoadAnswerKey implements app.AnswerKeyLoader.
func (s *Store) LoadAnswerKey(_ context.Context, quizID int64) (domain.AnswerKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.AnswerKey{}, domain.ErrQuizNotFound
	}
	key := domain.AnswerKey{QuizID: quizID, QuestionIDs: []int64{}, Correct: make(map[int64]int64)}
	for _, question := range s.questionsLocked(quizID) {
		key.QuestionIDs = append(key.QuestionIDs, question.ID)
		for _, option := range s.optionsLocked(question.ID) {
			if option.IsCorrect {
				key.Correct[question.ID] = option.ID
				break
			}
		}
	}
	return key, nil
}

// Attempts

func (s *Store) CreateAttempt(_ context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[attempt.QuizID]
	if !ok {
		return domain.Attempt{}, domain.ErrQuizNotFound
	}
	attempt.ID = s.id()
	attempt.QuizTitle = quiz.Title
	s.attempts[attempt.ID] = attempt
	return attempt, nil
}

func (s *Store) ListAttemptsByQuiz(_ context.Context, quizID int64) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attemptsLocked(func(a domain.Attempt) bool { return a.QuizID == quizID }), nil
}

func (s *Store) ListAttempts(_ context.Context) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attemptsLocked(func(domain.Attempt) bool { return true }), nil
}

func (s *Store) attemptsLocked(match func(domain.Attempt) bool) []domain.Attempt {
	out := make([]domain.Attempt, 0)
	for _, attempt := range s.attempts {
		if !match(attempt) {
			continue
		}
		attempt.QuizTitle = s.quizzes[attempt.QuizID].Title
		out = append(out, attempt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Students

func (s *Store) CreateStudent(_ context.Context, student domain.Student) (domain.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.students {
		if existing.Username == student.Username {
			return domain.Student{}, domain.ErrUsernameTaken
		}
		if student.Email != "" && existing.Email == student.Email {
			return domain.Student{}, domain.ErrEmailTaken
		}
	}
	student.ID = s.id()
	s.students[student.ID] = student
	return student, nil
}

func (s *Store) FindStudentByUsername(_ context.Context, username string) (domain.Student, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, student := range s.students {
		if student.Username == username {
			return student, true, nil
		}
	}
	return domain.Student{}, false, nil
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, found, err := s.FindStudentByUsername(ctx, username)
	return found, err
}

func (s *Store) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, student := range s.students {
		if student.Email != "" && student.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListStudents(_ context.Context) ([]domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Student, 0, len(s.students))
	for _, student := range s.students {
		out = append(out, student)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
