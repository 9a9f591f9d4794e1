package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/config"
	"github.com/stemsi/schoolhub-backend/internal/database"
	"github.com/stemsi/schoolhub-backend/internal/logger"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/repository"
	"github.com/stemsi/schoolhub-backend/internal/service"
)

// seedPassword satisfies the password policy so seeded accounts can log in.
const seedPassword = "Schoolhub1"

func main() {
	students := flag.Int("students", 20, "Number of students to create")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	groupRepo := repository.NewGroupRepository(pool)
	timetableRepo := repository.NewTimetableRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	authService := service.NewAuthService(userRepo, nil, nil, cfg.BcryptCost, log)

	if exists, err := userRepo.ExistsByLogin(ctx, "teacher1"); err != nil {
		log.Fatal().Err(err).Msg("Failed to check existing data")
	} else if exists {
		fmt.Println("Database already seeded, nothing to do.")
		return
	}

	fmt.Printf("=== Seeding demo school with %d students ===\n", *students)

	newUser := func(first, last, login string, role ability.Role) *model.User {
		u := &model.User{
			FirstName: first,
			LastName:  last,
			Email:     login + "@schoolhub.local",
			Login:     login,
			Role:      role,
			BirthDate: time.Date(2008, time.September, 1, 0, 0, 0, 0, time.UTC),
		}
		if err := authService.CreateAccount(ctx, u, seedPassword); err != nil {
			log.Fatal().Err(err).Str("login", login).Msg("Failed to create user")
		}
		return u
	}

	teacher := newUser("Ada", "Teacher", "teacher1", ability.RoleTeacher)

	subject := &model.Subject{Name: "Mathematics"}
	if err := subjectRepo.Create(ctx, subject); err != nil {
		log.Fatal().Err(err).Msg("Failed to create subject")
	}

	group := &model.Group{Name: "1A"}
	if err := groupRepo.Create(ctx, group); err != nil {
		log.Fatal().Err(err).Msg("Failed to create group")
	}

	studentIDs := make([]int, 0, *students)
	for i := 1; i <= *students; i++ {
		s := newUser("Student", fmt.Sprintf("No%02d", i), fmt.Sprintf("student%02d", i), ability.RoleStudent)
		if err := groupRepo.AddStudent(ctx, group.ID, s.ID); err != nil {
			log.Fatal().Err(err).Int("student_id", s.ID).Msg("Failed to add student to group")
		}
		studentIDs = append(studentIDs, s.ID)
	}

	// ─── Teaching assignment and lessons ───────────────────────────────
	assignment := &model.SubjectAssignment{SubjectID: subject.ID, TeacherID: teacher.ID}
	if err := subjectRepo.AssignTeacher(ctx, assignment); err != nil {
		log.Fatal().Err(err).Msg("Failed to assign teacher")
	}
	sotID := assignment.ID
	if err := groupRepo.AddTeacher(ctx, group.ID, sotID); err != nil {
		log.Fatal().Err(err).Msg("Failed to assign group")
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var timetableIDs []int
	for day := -3; day <= 7; day++ {
		lesson, err := timetableRepo.Create(ctx, model.TimetableSlot{
			GroupID:            group.ID,
			SubjectOnTeacherID: sotID,
			Date:               today.AddDate(0, 0, day),
			LessonNumber:       1,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create lesson")
		}
		if day < 0 {
			timetableIDs = append(timetableIDs, lesson.ID)
		}
	}

	welcome := &model.Message{
		Title:    "Welcome to 1A",
		Content:  "Mathematics lessons start on Monday. Bring a calculator.",
		AuthorID: teacher.ID,
	}
	if err := messageRepo.Create(ctx, welcome, studentIDs); err != nil {
		log.Fatal().Err(err).Msg("Failed to send welcome message")
	}

	// ─── Grades and attendance ─────────────────────────────────────────
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i, studentID := range studentIDs {
		batch.Queue(
			`INSERT INTO grades (value, weight, description, student_id, subject_on_teacher_id)
			 VALUES ($1, $2, $3, $4, $5)`,
			float64(1+i%6), 1+i%3, "Seeded quiz", studentID, sotID)
		for j, ttID := range timetableIDs {
			status := model.AttendancePresent
			if (i+j)%5 == 0 {
				status = model.AttendanceAbsent
			}
			batch.Queue(
				`INSERT INTO attendances (student_id, timetable_id, status) VALUES ($1, $2, $3)`,
				studentID, ttID, status)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert grades and attendance")
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to commit seed data")
	}

	fmt.Printf("\nSeed completed! Teacher login 'teacher1', students 'student01'..'student%02d', password %q.\n",
		*students, seedPassword)
}
