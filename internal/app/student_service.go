package app

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"quiz-service/internal/domain"
	"quiz-service/internal/logger"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher is the bcrypt PasswordHasher.
type BcryptHasher struct {
	cost int
	// dummy is compared against when the username is unknown.
	dummy []byte
}

func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("quiz-service"), cost)
	if err != nil {
		return nil, err
	}
	return &BcryptHasher{cost: cost, dummy: dummy}, nil
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// StudentService registers and authenticates students.
type StudentService struct {
	students StudentRepository
	hasher   PasswordHasher
	log      *logger.Logger
}

func NewStudentService(students StudentRepository, hasher PasswordHasher, log *logger.Logger) *StudentService {
	return &StudentService{students: students, hasher: hasher, log: log}
}

// Register creates an account. Username and, when given, email must be unused.
func (s *StudentService) Register(ctx context.Context, in domain.StudentInput) (domain.Student, error) {
	taken, err := s.students.UsernameExists(ctx, in.Username)
	if err != nil {
		return domain.Student{}, err
	}
	if taken {
		return domain.Student{}, domain.ErrUsernameTaken
	}
	if in.Email != "" {
		taken, err := s.students.EmailExists(ctx, in.Email)
		if err != nil {
			return domain.Student{}, err
		}
		if taken {
			return domain.Student{}, domain.ErrEmailTaken
		}
	}

	student, err := s.create(ctx, in)
	if err != nil {
		return domain.Student{}, err
	}
	s.log.Info("student registered", "student_id", student.ID)
	return student, nil
}

// Login verifies credentials. Unknown usernames and wrong passwords both
// yield domain.ErrInvalidCredentials.
func (s *StudentService) Login(ctx context.Context, username, password string) (domain.Student, error) {
	student, found, err := s.students.FindStudentByUsername(ctx, username)
	if err != nil {
		return domain.Student{}, err
	}
	hash := ""
	if found {
		hash = student.PasswordHash
	}
	if err := s.hasher.Compare(hash, password); err != nil || !found {
		return domain.Student{}, domain.ErrInvalidCredentials
	}
	return student, nil
}

func (s *StudentService) List(ctx context.Context) ([]domain.Student, error) {
	return s.students.ListStudents(ctx)
}

// Migrate imports a batch of accounts. Records with a blank or already
// registered username are skipped; each record stands alone, and only the
// persisted ones are returned.
func (s *StudentService) Migrate(ctx context.Context, batch []domain.StudentInput) ([]domain.Student, error) {
	saved := make([]domain.Student, 0, len(batch))
	for _, in := range batch {
		if strings.TrimSpace(in.Username) == "" {
			continue
		}
		exists, err := s.students.UsernameExists(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		student, err := s.create(ctx, in)
		if errors.Is(err, domain.ErrUsernameTaken) || errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, bcrypt.ErrPasswordTooLong) {
			s.log.Warn("migrate skipped student", "username", in.Username, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		saved = append(saved, student)
	}
	s.log.Info("students migrated", "received", len(batch), "saved", len(saved))
	return saved, nil
}

func (s *StudentService) create(ctx context.Context, in domain.StudentInput) (domain.Student, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.Student{}, err
	}
	return s.students.CreateStudent(ctx, domain.Student{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
}
