package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Juenzo/CloudComputing-Project/internal/lesson"
	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/quiz"
)

// definition is a course described in YAML. File lessons name a local file
// relative to the definition.
type definition struct {
	Course  courseDef   `yaml:"course"`
	Lessons []lessonDef `yaml:"lessons"`
	Quiz    *quizDef    `yaml:"quiz"`

	dir string
}

type courseDef struct {
	Title       string  `yaml:"title"`
	Slug        string  `yaml:"slug"`
	Description *string `yaml:"description"`
	Category    *string `yaml:"category"`
	Level       string  `yaml:"level"`
}

type lessonDef struct {
	Title       string  `yaml:"title"`
	Description *string `yaml:"description"`
	ContentType string  `yaml:"content_type"`
	ContentText string  `yaml:"content_text"`
	ContentURL  string  `yaml:"content_url"`
	File        string  `yaml:"file"`
}

type quizDef struct {
	Title       string        `yaml:"title"`
	Description *string       `yaml:"description"`
	Questions   []questionDef `yaml:"questions"`
}

type questionDef struct {
	Text    string      `yaml:"text"`
	Points  int         `yaml:"points"`
	Choices []choiceDef `yaml:"choices"`
}

type choiceDef struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

func loadDefinition(path string) (*definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	def, err := parseDefinition(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	def.dir = filepath.Dir(path)
	return def, nil
}

func parseDefinition(r io.Reader) (*definition, error) {
	var def definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}
	return &def, nil
}

// filePath resolves a lesson file against the definition's directory.
func (d *definition) filePath(l lessonDef) string {
	if filepath.IsAbs(l.File) {
		return l.File
	}
	return filepath.Join(d.dir, l.File)
}

// validate runs every local rule and reports all problems at once. appending
// is set when the lessons go into an existing course, in which case the
// course block is not needed.
func (d *definition) validate(appending bool) error {
	var errs []error
	if !appending {
		if strings.TrimSpace(d.Course.Title) == "" {
			errs = append(errs, errors.New("course: title is required"))
		}
		if d.Course.Level != "" {
			if _, ok := model.ParseCourseLevel(d.Course.Level); !ok {
				errs = append(errs, fmt.Errorf("course: unknown level %q", d.Course.Level))
			}
		}
	}

	for i, l := range d.Lessons {
		if err := d.checkLesson(l); err != nil {
			errs = append(errs, fmt.Errorf("lessons[%d] %q: %w", i, l.Title, err))
		}
	}

	if d.Quiz != nil {
		draft, err := d.Quiz.draft(0)
		if err == nil {
			err = draft.Validate()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("quiz: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (d *definition) checkLesson(l lessonDef) error {
	if strings.TrimSpace(l.Title) == "" {
		return errors.New("title is required")
	}
	t, ok := lesson.ParseContentType(l.ContentType)
	if !ok {
		return &lesson.ContentError{ContentType: model.ContentType(l.ContentType), Reason: lesson.ReasonUnknownContentType}
	}
	if l.File != "" {
		if !t.IsFile() {
			return fmt.Errorf("file given for a %s lesson", t)
		}
		if _, err := os.Stat(d.filePath(l)); err != nil {
			return err
		}
	}
	return lesson.Validate(t, lesson.Fields{
		ContentText:   l.ContentText,
		ContentURL:    l.ContentURL,
		PendingUpload: l.File != "",
	})
}

// draft builds the quiz through the builder, so it obeys the same
// one-correct-choice rule as an interactive edit.
func (q *quizDef) draft(courseID int64) (quiz.Draft, error) {
	d := quiz.NewDraft(courseID).SetDescription(q.Description)
	if q.Title != "" {
		d = d.SetTitle(q.Title)
	}

	for i, qd := range q.Questions {
		var (
			key quiz.Key
			err error
		)
		d, key = d.AddQuestion()
		if d, err = d.EditQuestionText(key, qd.Text); err != nil {
			return d, err
		}
		if qd.Points != 0 {
			if d, err = d.SetPoints(key, qd.Points); err != nil {
				return d, err
			}
		}

		// AddQuestion starts with a fixed set of empty choices; grow or shrink
		// it to the defined count.
		for choiceCount(d, key) < len(qd.Choices) {
			if d, _, err = d.AddChoice(key); err != nil {
				return d, err
			}
		}
		for choiceCount(d, key) > max(len(qd.Choices), quiz.MinChoices) {
			last, _ := d.ChoiceKey(i, choiceCount(d, key)-1)
			if d, err = d.RemoveChoice(key, last); err != nil {
				return d, err
			}
		}

		correct := 0
		for j, cd := range qd.Choices {
			ck, _ := d.ChoiceKey(i, j)
			if d, err = d.EditChoiceText(key, ck, cd.Text); err != nil {
				return d, err
			}
			if cd.Correct {
				correct++
				if d, err = d.SetCorrectChoice(key, ck); err != nil {
					return d, err
				}
			}
		}
		if correct != 1 {
			return d, fmt.Errorf("questions[%d]: exactly one choice must be correct, %d are", i, correct)
		}
	}
	return d, nil
}

func choiceCount(d quiz.Draft, key quiz.Key) int {
	q, _ := d.Question(key)
	return len(q.Choices)
}
