package admin_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starquake/quizgen/internal/admin"
	"github.com/starquake/quizgen/internal/logging"
	"github.com/starquake/quizgen/internal/manage"
	"github.com/starquake/quizgen/internal/quiz"
	"github.com/starquake/quizgen/internal/store"
)

type stubStore struct {
	load      func(ctx context.Context) ([]quiz.Question, error)
	overwrite func(ctx context.Context, qs []quiz.Question) error
}

func (s stubStore) Load(ctx context.Context) ([]quiz.Question, error) {
	if s.load == nil {
		return nil, errors.New("load not supplied in stub")
	}

	return s.load(ctx)
}

func (stubStore) Append(_ context.Context, _ quiz.Question) error {
	panic("not implemented")
}

func (s stubStore) Overwrite(ctx context.Context, qs []quiz.Question) error {
	if s.overwrite == nil {
		return errors.New("overwrite not supplied in stub")
	}

	return s.overwrite(ctx, qs)
}

func (stubStore) Ping(_ context.Context) error { return nil }

var (
	france = quiz.Question{
		Question: "Capital of France",
		Choices:  quiz.Choices{A: "Paris", B: "Rome", C: "Berlin", D: "Madrid"},
		Answer:   quiz.KeyA,
	}
	planet = quiz.Question{
		Question: "Largest planet",
		Choices:  quiz.Choices{A: "Mars", B: "Venus", C: "Jupiter", D: "Earth"},
		Answer:   quiz.KeyC,
	}
)

// newFileService returns a manage.Service over a FileStore holding qs.
func newFileService(t *testing.T, logger *logging.Logger, qs ...quiz.Question) (*manage.Service, *store.FileStore) {
	t.Helper()

	fs := store.NewFileStore(filepath.Join(t.TempDir(), "quiz_generator.txt"), logger)
	if err := fs.Overwrite(t.Context(), qs); err != nil {
		t.Fatalf("Overwrite() error = %v", err)
	}

	return manage.NewService(fs, logger), fs
}

func loadAll(t *testing.T, fs *store.FileStore) []quiz.Question {
	t.Helper()

	qs, err := fs.Load(t.Context())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	return qs
}

func serve(t *testing.T, h http.Handler, method, target string, form url.Values, pathIndex string) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(t.Context(), method, target, body)
	if err != nil {
		t.Fatalf("http.NewRequest error: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if pathIndex != "" {
		req.SetPathValue("index", pathIndex)
	}
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	return rr
}

func TestHandleIndex(t *testing.T) {
	t.Parallel()

	logger := logging.NewLogger(io.Discard)
	svc, _ := newFileService(t, logger, france, planet)

	rr := serve(t, admin.HandleIndex(logger, svc), http.MethodGet, "/admin", nil, "")

	if got, want := rr.Code, http.StatusOK; got != want {
		t.Errorf("got status code %v, want %v", got, want)
	}
	body := rr.Body.String()
	for _, want := range []string{"Admin Dashboard", "2 questions in the store"} {
		if !strings.Contains(body, want) {
			t.Errorf("got: %q, should contain: %q", body, want)
		}
	}
}

func TestHandleQuestionList(t *testing.T) {
	t.Parallel()

	t.Run("list questions", func(t *testing.T) {
		t.Parallel()

		logger := logging.NewLogger(io.Discard)
		svc, _ := newFileService(t, logger, france, planet)

		rr := serve(t, admin.HandleQuestionList(logger, svc), http.MethodGet, "/admin/questions", nil, "")

		if got, want := rr.Code, http.StatusOK; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		body := rr.Body.String()
		for _, want := range []string{
			"Admin Dashboard - Questions",
			"Capital of France",
			"Largest planet",
			`action="/admin/questions/2/edit"`,
			`href="/admin/questions/2/delete"`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("got: %q, should contain: %q", body, want)
			}
		}
	})

	t.Run("no questions", func(t *testing.T) {
		t.Parallel()

		logger := logging.NewLogger(io.Discard)
		svc, _ := newFileService(t, logger)

		rr := serve(t, admin.HandleQuestionList(logger, svc), http.MethodGet, "/admin/questions", nil, "")

		if got, want := rr.Code, http.StatusOK; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		if got, want := rr.Body.String(), "No questions yet."; !strings.Contains(got, want) {
			t.Errorf("got: %q, should contain: %q", got, want)
		}
	})

	t.Run("load error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := logging.NewLogger(&buf)
		testError := errors.New("test error")
		svc := manage.NewService(stubStore{
			load: func(_ context.Context) ([]quiz.Question, error) { return nil, testError },
		}, logger)

		rr := serve(t, admin.HandleQuestionList(logger, svc), http.MethodGet, "/admin/questions", nil, "")

		if got, want := rr.Code, http.StatusInternalServerError; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		if got, want := buf.String(), "test error"; !strings.Contains(got, want) {
			t.Errorf("got: %q, should contain: %q", got, want)
		}
	})
}

func TestHandleQuestionCreate(t *testing.T) {
	t.Parallel()

	logger := logging.NewLogger(io.Discard)
	rr := serve(t, admin.HandleQuestionCreate(logger), http.MethodGet, "/admin/questions/new", nil, "")

	if got, want := rr.Code, http.StatusOK; got != want {
		t.Fatalf("status code = %v, want %v", got, want)
	}
	body := rr.Body.String()
	for _, want := range []string{`name="question"`, `name="choice_a"`, `name="choice_d"`, `name="answer" value="b"`} {
		if !strings.Contains(body, want) {
			t.Errorf("got: %q, should contain: %q", body, want)
		}
	}
	if strings.Contains(body, "checked") {
		t.Error("new form has a preselected answer")
	}
}

func formValues(q quiz.Question) url.Values {
	v := url.Values{}
	v.Set("question", q.Question)
	for _, k := range quiz.Keys {
		v.Set("choice_"+string(k), q.Choices.Text(k))
	}
	if q.Answer != "" {
		v.Set("answer", string(q.Answer))
	}

	return v
}

func TestHandleQuestionSave(t *testing.T) {
	t.Parallel()

	t.Run("valid question is appended", func(t *testing.T) {
		t.Parallel()

		logger := logging.NewLogger(io.Discard)
		svc, fs := newFileService(t, logger, france)

		rr := serve(t, admin.HandleQuestionSave(logger, svc), http.MethodPost, "/admin/questions", formValues(planet), "")

		if got, want := rr.Code, http.StatusSeeOther; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		if got, want := rr.Header().Get("Location"), "/admin/questions"; got != want {
			t.Errorf("Location = %q, want %q", got, want)
		}
		if diff := cmp.Diff([]quiz.Question{france, planet}, loadAll(t, fs)); diff != "" {
			t.Errorf("stored questions mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing answer is a warning", func(t *testing.T) {
		t.Parallel()

		logger := logging.NewLogger(io.Discard)
		svc, fs := newFileService(t, logger)
		q := planet
		q.Answer = ""

		rr := serve(t, admin.HandleQuestionSave(logger, svc), http.MethodPost, "/admin/questions", formValues(q), "")

		if got, want := rr.Code, http.StatusUnprocessableEntity; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		body := rr.Body.String()
		for _, want := range []string{"Select the correct answer", `value="Jupiter"`, "Largest planet"} {
			if !strings.Contains(body, want) {
				t.Errorf("got: %q, should contain: %q", body, want)
			}
		}
		if got := loadAll(t, fs); len(got) != 0 {
			t.Errorf("stored %v, want nothing", got)
		}
	})

	t.Run("empty choice is a warning", func(t *testing.T) {
		t.Parallel()

		logger := logging.NewLogger(io.Discard)
		svc, _ := newFileService(t, logger)
		q := planet
		q.Choices.B = "  "

		rr := serve(t, admin.HandleQuestionSave(logger, svc), http.MethodPost, "/admin/questions", formValues(q), "")

		if got, want := rr.Code, http.StatusUnprocessableEntity; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		if got, want := rr.Body.String(), "Choice B is required"; !strings.Contains(got, want) {
			t.Errorf("got: %q, should contain: %q", got, want)
		}
	})

	t.Run("form input is trimmed before saving", func(t *testing.T) {
		t.Parallel()

		logger := logging.NewLogger(io.Discard)
		svc, fs := newFileService(t, logger)
		form := formValues(planet)
		form.Set("question", "  Largest planet\t")
		form.Set("choice_c", " Jupiter ")
		form.Set("answer", "C")

		rr := serve(t, admin.HandleQuestionSave(logger, svc), http.MethodPost, "/admin/questions", form, "")

		if got, want := rr.Code, http.StatusSeeOther; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		if diff := cmp.Diff([]quiz.Question{planet}, loadAll(t, fs)); diff != "" {
			t.Errorf("stored questions mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid edit stays an edit", func(t *testing.T) {
		t.Parallel()

		logger := logging.NewLogger(io.Discard)
		svc, _ := newFileService(t, logger)
		q := planet
		q.Question = ""
		form := formValues(q)
		form.Set("editing", "true")

		rr := serve(t, admin.HandleQuestionSave(logger, svc), http.MethodPost, "/admin/questions", form, "")

		if got, want := rr.Code, http.StatusUnprocessableEntity; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		body := rr.Body.String()
		for _, want := range []string{
			"Admin Dashboard - Edit Question",
			"Saving adds the question to the end of the list.",
			`name="editing" value="true"`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("got: %q, should contain: %q", body, want)
			}
		}
	})
}

func TestHandleQuestionEdit(t *testing.T) {
	t.Parallel()

	t.Run("extracts and prefills", func(t *testing.T) {
		t.Parallel()

		logger := logging.NewLogger(io.Discard)
		svc, fs := newFileService(t, logger, france, planet)

		rr := serve(t, admin.HandleQuestionEdit(logger, svc), http.MethodPost, "/admin/questions/1/edit", url.Values{}, "1")

		if got, want := rr.Code, http.StatusOK; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		body := rr.Body.String()
		for _, want := range []string{
			`value="Capital of France"`, `value="Paris"`, `value="a" checked`, `name="editing" value="true"`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("got: %q, should contain: %q", body, want)
			}
		}
		if diff := cmp.Diff([]quiz.Question{planet}, loadAll(t, fs)); diff != "" {
			t.Errorf("stored questions mismatch (-want +got):\n%s", diff)
		}
	})

	tests := []struct {
		name  string
		index string
	}{
		{"stale selection", "3"},
		{"zero", "0"},
		{"not a number", "first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger := logging.NewLogger(io.Discard)
			svc, fs := newFileService(t, logger, france, planet)

			target := fmt.Sprintf("/admin/questions/%s/edit", tt.index)
			rr := serve(t, admin.HandleQuestionEdit(logger, svc), http.MethodPost, target, url.Values{}, tt.index)

			if got, want := rr.Code, http.StatusNotFound; got != want {
				t.Fatalf("status code = %v, want %v", got, want)
			}
			if got, want := rr.Body.String(), "No Selection"; !strings.Contains(got, want) {
				t.Errorf("got: %q, should contain: %q", got, want)
			}
			if got := len(loadAll(t, fs)); got != 2 {
				t.Errorf("stored %d questions, want 2", got)
			}
		})
	}
}

func TestHandleQuestionDelete(t *testing.T) {
	t.Parallel()

	t.Run("confirm page", func(t *testing.T) {
		t.Parallel()

		logger := logging.NewLogger(io.Discard)
		svc, fs := newFileService(t, logger, france, planet)

		rr := serve(t, admin.HandleQuestionDeleteConfirm(logger, svc), http.MethodGet, "/admin/questions/2/delete", nil, "2")

		if got, want := rr.Code, http.StatusOK; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		body := rr.Body.String()
		for _, want := range []string{"Delete question 2?", "Largest planet", "Correct answer: C"} {
			if !strings.Contains(body, want) {
				t.Errorf("got: %q, should contain: %q", body, want)
			}
		}
		if got := len(loadAll(t, fs)); got != 2 {
			t.Errorf("stored %d questions, want 2", got)
		}
	})

	t.Run("delete second record", func(t *testing.T) {
		t.Parallel()

		logger := logging.NewLogger(io.Discard)
		third := france
		third.Question = "Capital of Italy"
		third.Answer = quiz.KeyB
		svc, fs := newFileService(t, logger, france, planet, third)

		rr := serve(t, admin.HandleQuestionDelete(logger, svc), http.MethodPost, "/admin/questions/2/delete", url.Values{}, "2")

		if got, want := rr.Code, http.StatusSeeOther; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		if diff := cmp.Diff([]quiz.Question{france, third}, loadAll(t, fs)); diff != "" {
			t.Errorf("stored questions mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no selection", func(t *testing.T) {
		t.Parallel()

		logger := logging.NewLogger(io.Discard)
		svc, _ := newFileService(t, logger, france)

		for _, h := range []http.Handler{
			admin.HandleQuestionDeleteConfirm(logger, svc),
			admin.HandleQuestionDelete(logger, svc),
		} {
			rr := serve(t, h, http.MethodPost, "/admin/questions/9/delete", url.Values{}, "9")
			if got, want := rr.Code, http.StatusNotFound; got != want {
				t.Errorf("status code = %v, want %v", got, want)
			}
			if got, want := rr.Body.String(), admin.NoSelectionWarning; !strings.Contains(got, want) {
				t.Errorf("got: %q, should contain: %q", got, want)
			}
		}
	})

	t.Run("overwrite error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := logging.NewLogger(&buf)
		testError := errors.New("disk full")
		svc := manage.NewService(stubStore{
			load:      func(_ context.Context) ([]quiz.Question, error) { return []quiz.Question{france}, nil },
			overwrite: func(_ context.Context, _ []quiz.Question) error { return testError },
		}, logger)

		rr := serve(t, admin.HandleQuestionDelete(logger, svc), http.MethodPost, "/admin/questions/1/delete", url.Values{}, "1")

		if got, want := rr.Code, http.StatusInternalServerError; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		if got, want := buf.String(), "disk full"; !strings.Contains(got, want) {
			t.Errorf("got: %q, should contain: %q", got, want)
		}
	})
}

func TestHandleNotFound(t *testing.T) {
	t.Parallel()

	logger := logging.NewLogger(io.Discard)
	rr := serve(t, admin.HandleNotFound(logger), http.MethodGet, "/admin/nope", nil, "")

	if got, want := rr.Code, http.StatusNotFound; got != want {
		t.Fatalf("status code = %v, want %v", got, want)
	}
	if got, want := rr.Body.String(), "does not exist"; !strings.Contains(got, want) {
		t.Errorf("got: %q, should contain: %q", got, want)
	}
}
