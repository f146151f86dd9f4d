package main

import (
	"context"
	"fmt"
	"time"

	"github.com/coursekit/coursekit-backend/internal/config"
	"github.com/coursekit/coursekit-backend/internal/database"
	"github.com/coursekit/coursekit-backend/internal/logger"
	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo instructor, a published course with one module and lesson,
// and a published quiz with a small mixed question set. Idempotent enough
// for local use: reruns fail on the duplicate instructor email.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	fmt.Println("=== Seeding Demo Data ===")

	hash, err := bcrypt.GenerateFromPassword([]byte("instructor1"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}
	instructor := &model.User{
		Name:         "Demo Instructor",
		Email:        "instructor@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleInstructor,
	}
	if err := userRepo.Create(ctx, instructor); err != nil {
		log.Fatal().Err(err).Msg("Failed to create instructor (already seeded?)")
	}
	fmt.Printf("Instructor: %s\n", instructor.Email)

	course := &model.Course{
		OwnerID:     instructor.ID,
		Title:       "Introduction to Go",
		Description: "Syntax, tooling and the concurrency model.",
		Published:   true,
	}
	if err := courseRepo.Create(ctx, course); err != nil {
		log.Fatal().Err(err).Msg("Failed to create course")
	}
	fmt.Printf("Course: %s\n", course.Title)

	module := &model.CourseModule{CourseID: course.ID, Title: "Getting Started", OrderNum: 1}
	if err := lessonRepo.CreateModule(ctx, module); err != nil {
		log.Fatal().Err(err).Msg("Failed to create module")
	}
	lesson := &model.Lesson{
		ModuleID: module.ID,
		Title:    "Hello, World",
		Content:  "Install the toolchain and run your first program.",
		OrderNum: 1,
	}
	if err := lessonRepo.CreateLesson(ctx, lesson); err != nil {
		log.Fatal().Err(err).Msg("Failed to create lesson")
	}

	limit := 600
	attempts := 3
	test := &model.Test{
		CourseID:         &course.ID,
		ModuleID:         &module.ID,
		AuthorID:         instructor.ID,
		Title:            "Go Basics Quiz",
		Kind:             model.TestKindQuiz,
		TimeLimitSeconds: &limit,
		PassingScore:     60,
		AllowedAttempts:  &attempts,
		RandomizeOrder:   true,
	}
	if err := testRepo.Create(ctx, test); err != nil {
		log.Fatal().Err(err).Msg("Failed to create test")
	}

	questions := []model.Question{
		{
			Prompt: "Which keyword declares a new goroutine?",
			Kind:   model.QuestionKindSingleChoice, Points: 10, OrderNum: 1,
			Options: []model.QuestionOption{
				{Text: "go", IsCorrect: true, OrderNum: 1},
				{Text: "async", OrderNum: 2},
				{Text: "spawn", OrderNum: 3},
			},
		},
		{
			Prompt: "Select every built-in reference type.",
			Kind:   model.QuestionKindMultiSelect, Points: 10, OrderNum: 2,
			Options: []model.QuestionOption{
				{Text: "map", IsCorrect: true, OrderNum: 1},
				{Text: "slice", IsCorrect: true, OrderNum: 2},
				{Text: "int", OrderNum: 3},
				{Text: "channel", IsCorrect: true, OrderNum: 4},
			},
		},
		{
			Prompt: "Name the command that formats Go source.",
			Kind:   model.QuestionKindShortText, Points: 5, OrderNum: 3,
		},
		{
			Prompt: "Explain when you would pick a buffered channel over an unbuffered one.",
			Kind:   model.QuestionKindEssay, Points: 15, OrderNum: 4,
		},
	}
	if err := questionRepo.ReplaceByTest(ctx, test.ID, questions); err != nil {
		log.Fatal().Err(err).Msg("Failed to create questions")
	}
	if err := testRepo.SetStatus(ctx, test.ID, model.TestStatusPublished); err != nil {
		log.Fatal().Err(err).Msg("Failed to publish test")
	}
	fmt.Printf("Test: %s (%d questions, published)\n", test.Title, len(questions))

	// Seed a demo student too so login works out of the box.
	studentHash, err := bcrypt.GenerateFromPassword([]byte("student12"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}
	student := &model.User{
		Name:         "Demo Student",
		Email:        "student@example.com",
		PasswordHash: string(studentHash),
		Role:         model.RoleStudent,
	}
	if err := userRepo.Create(ctx, student); err != nil {
		log.Fatal().Err(err).Msg("Failed to create student")
	}
	enrollRepo := repository.NewEnrollmentRepository(pool)
	if err := enrollRepo.Create(ctx, &model.Enrollment{CourseID: course.ID, UserID: student.ID}); err != nil {
		log.Fatal().Err(err).Msg("Failed to enroll student")
	}
	fmt.Printf("Student: %s (enrolled)\n", student.Email)

	fmt.Println("Done.")
}
