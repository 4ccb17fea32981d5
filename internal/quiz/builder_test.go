package quiz

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

func assertOneCorrect(t *testing.T, d Draft) {
	t.Helper()
	for i, q := range d.Questions() {
		n := 0
		for _, c := range q.Choices {
			if c.IsCorrect {
				n++
			}
		}
		if n != 1 {
			t.Fatalf("question %d: want exactly one correct choice got %d", i, n)
		}
	}
}

func filledDraft(t *testing.T) (Draft, Key) {
	t.Helper()
	d, q := NewDraft(7).AddQuestion()
	var err error
	if d, err = d.EditQuestionText(q, "2 + 2 = ?"); err != nil {
		t.Fatalf("EditQuestionText: %v", err)
	}
	for i, text := range []string{"3", "4", "5", "22"} {
		c, _ := d.ChoiceKey(0, i)
		if d, err = d.EditChoiceText(q, c, text); err != nil {
			t.Fatalf("EditChoiceText: %v", err)
		}
	}
	return d, q
}

func TestAddQuestionDefaults(t *testing.T) {
	d, key := NewDraft(1).AddQuestion()

	q, ok := d.Question(key)
	if !ok {
		t.Fatalf("question %q not found", key)
	}
	if len(q.Choices) != DefaultChoiceCount {
		t.Fatalf("choices: want=%d got=%d", DefaultChoiceCount, len(q.Choices))
	}
	if !q.Choices[0].IsCorrect {
		t.Fatalf("first choice should be correct by default")
	}
	if q.Points != 1 {
		t.Fatalf("points: want 1 got %d", q.Points)
	}
	assertOneCorrect(t, d)
}

func TestOperationsDoNotMutateReceiver(t *testing.T) {
	before, q := filledDraft(t)
	snapshot := before.Questions()

	c, _ := before.ChoiceKey(0, 2)
	if _, err := before.SetCorrectChoice(q, c); err != nil {
		t.Fatalf("SetCorrectChoice: %v", err)
	}
	if _, err := before.EditChoiceText(q, c, "changed"); err != nil {
		t.Fatalf("EditChoiceText: %v", err)
	}
	before.AddQuestion()

	if !reflect.DeepEqual(snapshot, before.Questions()) {
		t.Fatalf("receiver was mutated")
	}
}

func TestSetCorrectChoiceIsAtomicAndIdempotent(t *testing.T) {
	d, q := filledDraft(t)
	c, _ := d.ChoiceKey(0, 1)

	once, err := d.SetCorrectChoice(q, c)
	if err != nil {
		t.Fatalf("SetCorrectChoice: %v", err)
	}
	twice, err := once.SetCorrectChoice(q, c)
	if err != nil {
		t.Fatalf("SetCorrectChoice: %v", err)
	}

	assertOneCorrect(t, once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("SetCorrectChoice is not idempotent")
	}
	got, _ := once.Question(q)
	if !got.Choices[1].IsCorrect || got.Choices[0].IsCorrect {
		t.Fatalf("correct flag not moved: %+v", got.Choices)
	}
}

func TestSetCorrectChoiceUnknownKeys(t *testing.T) {
	d, q := filledDraft(t)
	c, _ := d.ChoiceKey(0, 0)

	if _, err := d.SetCorrectChoice("nope", c); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion got %v", err)
	}
	if _, err := d.SetCorrectChoice(q, "nope"); !errors.Is(err, ErrUnknownChoice) {
		t.Fatalf("expected ErrUnknownChoice got %v", err)
	}
}

func TestKeysSurviveReorderAndRemoval(t *testing.T) {
	d, q1 := NewDraft(1).AddQuestion()
	d, q2 := d.AddQuestion()
	d, q3 := d.AddQuestion()

	d, err := d.MoveQuestion(q3, 0)
	if err != nil {
		t.Fatalf("MoveQuestion: %v", err)
	}
	d, err = d.RemoveQuestion(q1)
	if err != nil {
		t.Fatalf("RemoveQuestion: %v", err)
	}
	d, err = d.EditQuestionText(q2, "still me")
	if err != nil {
		t.Fatalf("EditQuestionText: %v", err)
	}

	qs := d.Questions()
	if len(qs) != 2 || qs[0].Key != q3 || qs[1].Key != q2 {
		t.Fatalf("unexpected order: %+v", qs)
	}
	if qs[1].Text != "still me" {
		t.Fatalf("edit went to the wrong question")
	}
}

func TestRemoveChoiceKeepsInvariant(t *testing.T) {
	d, q := filledDraft(t)
	correct, _ := d.ChoiceKey(0, 0)

	d, err := d.RemoveChoice(q, correct)
	if err != nil {
		t.Fatalf("RemoveChoice: %v", err)
	}
	assertOneCorrect(t, d)

	c1, _ := d.ChoiceKey(0, 1)
	d, err = d.RemoveChoice(q, c1)
	if err != nil {
		t.Fatalf("RemoveChoice: %v", err)
	}

	c0, _ := d.ChoiceKey(0, 0)
	if _, err := d.RemoveChoice(q, c0); !errors.Is(err, model.ErrValidationFailed) {
		t.Fatalf("expected validation error below MinChoices got %v", err)
	}
}

func TestAddChoice(t *testing.T) {
	d, q := filledDraft(t)

	d, c, err := d.AddChoice(q)
	if err != nil {
		t.Fatalf("AddChoice: %v", err)
	}
	got, _ := d.Question(q)
	if len(got.Choices) != 5 || got.Choices[4].Key != c || got.Choices[4].IsCorrect {
		t.Fatalf("unexpected choices after AddChoice: %+v", got.Choices)
	}
	assertOneCorrect(t, d)
}

func TestSetPoints(t *testing.T) {
	d, q := filledDraft(t)

	if _, err := d.SetPoints(q, 0); !errors.Is(err, model.ErrValidationFailed) {
		t.Fatalf("expected validation error for 0 points got %v", err)
	}
	d, err := d.SetPoints(q, 3)
	if err != nil {
		t.Fatalf("SetPoints: %v", err)
	}
	got, _ := d.Question(q)
	if got.Points != 3 {
		t.Fatalf("points: want 3 got %d", got.Points)
	}
}

func TestValidateBlocksEmptyText(t *testing.T) {
	d, _ := NewDraft(1).AddQuestion()

	err := d.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError got %v", err)
	}
	if !errors.Is(err, model.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed")
	}
	fields := ve.Fields()
	if fields["questions[0].text"] != string(ReasonEmptyQuestionText) {
		t.Fatalf("missing question text issue: %v", fields)
	}
	if fields["questions[0].choices[3].text"] != string(ReasonEmptyChoiceText) {
		t.Fatalf("missing choice text issue: %v", fields)
	}

	if _, err := d.Serialize(); !errors.Is(err, model.ErrValidationFailed) {
		t.Fatalf("Serialize should refuse an invalid draft, got %v", err)
	}
}

func TestValidateRequiresQuestions(t *testing.T) {
	err := NewDraft(1).Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Issues[0].Reason != ReasonNoQuestions {
		t.Fatalf("expected NoQuestions got %v", err)
	}
}

func TestSerialize(t *testing.T) {
	d, q := filledDraft(t)
	c, _ := d.ChoiceKey(0, 1)
	d, _ = d.SetCorrectChoice(q, c)

	payload, err := d.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if payload.CourseID != 7 || payload.Title != DefaultTitle {
		t.Fatalf("unexpected header: %+v", payload)
	}
	want := []model.ChoicePayload{
		{Text: "3"}, {Text: "4", IsCorrect: true}, {Text: "5"}, {Text: "22"},
	}
	if len(payload.Questions) != 1 || !reflect.DeepEqual(payload.Questions[0].Choices, want) {
		t.Fatalf("choices: want=%+v got=%+v", want, payload.Questions)
	}
	if payload.Questions[0].Points != 1 || payload.Questions[0].Text != "2 + 2 = ?" {
		t.Fatalf("unexpected question payload: %+v", payload.Questions[0])
	}
}

func TestLoadPreservesChoiceCountAndNormalizes(t *testing.T) {
	stored := &model.Quiz{
		ID:       12,
		CourseID: 3,
		Title:    "Final",
		Questions: []model.Question{
			{ID: 1, Text: "a", Points: 2, Choices: []model.Choice{
				{ID: 10, Text: "x"}, {ID: 11, Text: "y", IsCorrect: true}, {ID: 12, Text: "z"},
			}},
			{ID: 2, Text: "b", Choices: []model.Choice{
				{ID: 20, Text: "x", IsCorrect: true}, {ID: 21, Text: "y", IsCorrect: true},
			}},
			{ID: 3, Text: "c", Points: 1, Choices: []model.Choice{{ID: 30, Text: "only"}}},
		},
	}

	d := Load(stored)

	if !d.Persisted() || d.ID() != 12 || d.CourseID() != 3 {
		t.Fatalf("identity not loaded: id=%d course=%d", d.ID(), d.CourseID())
	}
	qs := d.Questions()
	if len(qs[0].Choices) != 3 {
		t.Fatalf("choice count not preserved: %d", len(qs[0].Choices))
	}
	if !qs[0].Choices[1].IsCorrect || qs[0].Points != 2 {
		t.Fatalf("question 0 not loaded faithfully: %+v", qs[0])
	}
	if !qs[1].Choices[0].IsCorrect || qs[1].Choices[1].IsCorrect {
		t.Fatalf("multiple correct choices not normalized: %+v", qs[1].Choices)
	}
	if qs[1].Points != 1 {
		t.Fatalf("missing points should default to 1, got %d", qs[1].Points)
	}
	if len(qs[2].Choices) != MinChoices {
		t.Fatalf("short question should be padded to %d choices, got %d", MinChoices, len(qs[2].Choices))
	}
	assertOneCorrect(t, d)

	if err := d.Validate(); !errors.Is(err, model.ErrValidationFailed) {
		t.Fatalf("padded question must block submission")
	}
}
