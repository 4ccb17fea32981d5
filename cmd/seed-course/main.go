package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Juenzo/CloudComputing-Project/internal/lesson"
	"github.com/Juenzo/CloudComputing-Project/internal/logger"
	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/pkg/client"
)

type options struct {
	file        string
	server      string
	courseID    int64
	concurrency int
	dryRun      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "Path to the YAML course definition (required)")
	flag.StringVar(&opts.server, "server", envOr("SEED_SERVER_URL", "http://localhost:8080"), "Base URL of the course platform")
	flag.Int64Var(&opts.courseID, "course-id", 0, "Append the lessons (and quiz) to this existing course instead of creating one")
	flag.IntVar(&opts.concurrency, "concurrency", 4, "Maximum parallel file uploads")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Validate the definition without contacting the server")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "info"), "Log level")
	flag.Parse()

	log := logger.New(os.Stderr, *logLevel, "pretty").With().Str("component", "seed-course").Logger()

	if opts.file == "" {
		flag.Usage()
		os.Exit(2)
	}

	def, err := loadDefinition(opts.file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read course definition")
	}
	if err := def.validate(opts.courseID != 0); err != nil {
		log.Fatal().Err(err).Msg("Course definition is invalid")
	}
	if opts.dryRun {
		log.Info().Int("lessons", len(def.Lessons)).Bool("quiz", def.Quiz != nil).Msg("Definition is valid")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.New(opts.server, client.WithLogger(log))
	courseID, err := seed(ctx, c, def, opts, log)
	if err != nil {
		log.Error().Err(err).Msg("Seeding failed")
		fmt.Fprintln(os.Stderr, client.UserMessage(err))
		os.Exit(1)
	}
	// The course id is the only thing on stdout, for scripting.
	fmt.Println(courseID)
}

func seed(ctx context.Context, c *client.Client, def *definition, opts options, log zerolog.Logger) (int64, error) {
	courseID := opts.courseID
	var existing []model.Lesson
	if courseID == 0 {
		course, err := c.CreateCourse(ctx, model.CreateCourseRequest{
			Title:       def.Course.Title,
			Slug:        def.Course.Slug,
			Description: def.Course.Description,
			Category:    def.Course.Category,
			Level:       def.Course.Level,
		})
		if err != nil {
			return 0, fmt.Errorf("create course: %w", err)
		}
		courseID = course.ID
		log.Info().Int64("course_id", courseID).Str("slug", course.Slug).Msg("Course created")
	} else {
		lessons, err := c.ListLessons(ctx, courseID)
		if err != nil {
			return 0, fmt.Errorf("list lessons of course %d: %w", courseID, err)
		}
		existing = lessons
	}

	refs, err := uploadFiles(ctx, c, def, opts.concurrency, log)
	if err != nil {
		return courseID, err
	}

	// Lessons are created one by one so each gets the next free position.
	for i, ld := range def.Lessons {
		order := lesson.NextOrder(existing)
		req := model.CreateLessonRequest{
			Title:       ld.Title,
			Description: ld.Description,
			ContentType: ld.ContentType,
			Order:       &order,
			CourseID:    courseID,
			ContentText: ld.ContentText,
			ContentURL:  ld.ContentURL,
		}
		if ref, ok := refs[i]; ok {
			req.ContentURL = ref
		}
		created, err := c.CreateLesson(ctx, req)
		if err != nil {
			return courseID, fmt.Errorf("create lesson %q: %w", ld.Title, err)
		}
		existing = append(existing, *created)
		log.Info().Int64("lesson_id", created.ID).Int("order", created.Order).Str("title", created.Title).Msg("Lesson created")
	}

	if def.Quiz != nil {
		draft, err := def.Quiz.draft(courseID)
		if err != nil {
			return courseID, fmt.Errorf("build quiz: %w", err)
		}
		saved, err := c.SaveQuiz(ctx, draft)
		if err != nil {
			return courseID, fmt.Errorf("save quiz: %w", err)
		}
		log.Info().Int64("quiz_id", saved.ID()).Int("questions", saved.Len()).Msg("Quiz saved")
	}
	return courseID, nil
}

// uploadFiles stores every lesson file in parallel and returns the storage
// reference per lesson index. Lessons are only created once all uploads have
// completed.
func uploadFiles(ctx context.Context, c *client.Client, def *definition, limit int, log zerolog.Logger) (map[int]string, error) {
	refs := make([]string, len(def.Lessons))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	for i, ld := range def.Lessons {
		if ld.File == "" {
			continue
		}
		g.Go(func() error {
			path := def.filePath(ld)
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := c.Upload(ctx, model.ContentType(ld.ContentType), filepath.Base(path), f)
			if err != nil {
				return fmt.Errorf("upload %s: %w", path, err)
			}
			refs[i] = res.Filename
			log.Debug().Str("file", path).Str("ref", res.Filename).Msg("File uploaded")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[int]string)
	for i, ref := range refs {
		if ref != "" {
			out[i] = ref
		}
	}
	return out, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
