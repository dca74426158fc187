// Package admin contains handlers for the admin dashboard
package admin

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/starquake/quizgen/internal/httputil"
	"github.com/starquake/quizgen/internal/logging"
	"github.com/starquake/quizgen/internal/manage"
	"github.com/starquake/quizgen/internal/quiz"
	"github.com/starquake/quizgen/internal/web/tmpl"
)

// IndexData is the data for the index page.
type IndexData struct {
	Title   string
	Warning string
	Count   int
}

// QuestionListData is the data for the question list page.
type QuestionListData struct {
	Title     string
	Warning   string
	Questions []QuestionRow
}

// QuestionRow is one line of the question list. Position is 1-based.
type QuestionRow struct {
	Position int
	Text     string
}

// QuestionFormData is the data for the question form page.
type QuestionFormData struct {
	Title    string
	Warning  string
	Editing  bool
	Question string
	Choices  []ChoiceField
	Problems map[string]string
}

// ChoiceField is one choice input on the question form.
type ChoiceField struct {
	Key      string
	Label    string
	Text     string
	Selected bool
	Problem  string
}

// QuestionDeleteData is the data for the delete confirmation page.
type QuestionDeleteData struct {
	Title    string
	Warning  string
	Position int
	Question quiz.Question
}

// ErrorData is the data for the error pages.
type ErrorData struct {
	Title   string
	Warning string
}

//nolint:gochecknoglobals // Parsed once at startup; a parse failure is a programming error.
var layouts = template.Must(template.ParseFS(tmpl.FS, "admin/layouts/*.gohtml"))

const (
	listPath = "/admin/questions"

	error404Template = "admin/errors/404.gohtml"
	error500Template = "admin/errors/500.gohtml"

	listTitle    = "Admin Dashboard - Questions"
	newTitle     = "Admin Dashboard - New Question"
	editingTitle = "Admin Dashboard - Edit Question"

	// NoSelectionWarning is shown when an edit or delete does not address a stored question.
	NoSelectionWarning = "No Selection: please select a question to edit or delete."
	// InvalidQuestionWarning is shown when a submitted question has empty fields or no answer selected.
	InvalidQuestionWarning = "Please fill in the question and all choices, and select the correct answer."
)

func questionRows(qs []quiz.Question) []QuestionRow {
	rows := make([]QuestionRow, 0, len(qs))
	for i, q := range qs {
		rows = append(rows, QuestionRow{Position: i + 1, Text: q.Question})
	}

	return rows
}

func formData(title string, q quiz.Question, problems map[string]string) QuestionFormData {
	choices := make([]ChoiceField, 0, len(quiz.Keys))
	for _, k := range quiz.Keys {
		choices = append(choices, ChoiceField{
			Key:      string(k),
			Label:    "Choice " + k.Label(),
			Text:     q.Choices.Text(k),
			Selected: q.Answer == k,
			Problem:  problems["choice_"+string(k)],
		})
	}

	return QuestionFormData{
		Title:    title,
		Question: q.Question,
		Choices:  choices,
		Problems: problems,
	}
}

// questionFromForm reads a question from the posted form, trimming surrounding whitespace and lower-casing the
// answer key. Empty fields are kept so validation can report them.
func questionFromForm(r *http.Request) quiz.Question {
	q := quiz.Question{
		Question: r.PostFormValue("question"),
		Answer:   quiz.Key(r.PostFormValue("answer")),
	}
	for _, k := range quiz.Keys {
		q.Choices = q.Choices.Set(k, r.PostFormValue("choice_"+string(k)))
	}

	return q.Normalize()
}

// parseTemplate parses a template from the given path with layouts.
func parseTemplate(path string) *template.Template {
	return template.Must(template.Must(layouts.Clone()).ParseFS(tmpl.FS, path))
}

// executeTemplate executes a template with the given status and logs any errors.
// It does not return an error because the headers have already been written. So we can't render an error page anyway.
func executeTemplate(
	w http.ResponseWriter,
	r *http.Request,
	logger *logging.Logger,
	t *template.Template,
	status int,
	data any,
) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base.gohtml", data); err != nil {
		logger.Error(r.Context(), "error executing template", logging.ErrAttr(err))
	}
}

//nolint:gochecknoglobals // Error pages never change.
var (
	error404Page = parseTemplate(error404Template)
	error500Page = parseTemplate(error500Template)
	listPage     = parseTemplate("admin/pages/questionlist.gohtml")
)

// render404 renders the 404 error page.
func render404(w http.ResponseWriter, r *http.Request, logger *logging.Logger) {
	executeTemplate(w, r, logger, error404Page, http.StatusNotFound, ErrorData{Title: "Not Found"})
}

// render500 renders the 500 error page.
func render500(w http.ResponseWriter, r *http.Request, logger *logging.Logger) {
	executeTemplate(w, r, logger, error500Page, http.StatusInternalServerError, ErrorData{Title: "Server Error"})
}

// renderNoSelection renders the question list with the no selection warning.
func renderNoSelection(w http.ResponseWriter, r *http.Request, logger *logging.Logger, svc *manage.Service) {
	qs, err := svc.List(r.Context())
	if err != nil {
		logger.Error(r.Context(), "error listing questions", logging.ErrAttr(err))
		render500(w, r, logger)

		return
	}
	data := QuestionListData{
		Title:     listTitle,
		Warning:   NoSelectionWarning,
		Questions: questionRows(qs),
	}
	executeTemplate(w, r, logger, listPage, http.StatusNotFound, data)
}

// HandleIndex returns the index page.
func HandleIndex(logger *logging.Logger, svc *manage.Service) http.Handler {
	t := parseTemplate("admin/pages/index.gohtml")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.Count(r.Context())
		if err != nil {
			logger.Error(r.Context(), "error counting questions", logging.ErrAttr(err))
			render500(w, r, logger)

			return
		}

		data := IndexData{
			Title: "Admin Dashboard",
			Count: n,
		}
		executeTemplate(w, r, logger, t, http.StatusOK, data)
	})
}

// HandleQuestionList returns the question list page.
func HandleQuestionList(logger *logging.Logger, svc *manage.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		qs, err := svc.List(r.Context())
		if err != nil {
			logger.Error(r.Context(), "error listing questions", logging.ErrAttr(err))
			render500(w, r, logger)

			return
		}

		data := QuestionListData{
			Title:     listTitle,
			Questions: questionRows(qs),
		}
		executeTemplate(w, r, logger, listPage, http.StatusOK, data)
	})
}

// HandleQuestionCreate returns an empty question form.
func HandleQuestionCreate(logger *logging.Logger) http.Handler {
	t := parseTemplate("admin/pages/questionform.gohtml")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := formData(newTitle, quiz.Question{}, nil)
		executeTemplate(w, r, logger, t, http.StatusOK, data)
	})
}

// HandleQuestionSave appends the posted question to the store.
// An incomplete question re-renders the form with the problems and status 422.
func HandleQuestionSave(logger *logging.Logger, svc *manage.Service) http.Handler {
	t := parseTemplate("admin/pages/questionform.gohtml")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			logger.Warn(r.Context(), "error parsing form", logging.ErrAttr(err))
			http.Error(w, "error parsing form", http.StatusBadRequest)

			return
		}

		q := questionFromForm(r)
		err := svc.Create(r.Context(), q)

		var verr *quiz.ValidationError
		switch {
		case errors.As(err, &verr):
			data := formData(newTitle, q, verr.Problems)
			if r.PostFormValue("editing") == "true" {
				data.Title = editingTitle
				data.Editing = true
			}
			data.Warning = InvalidQuestionWarning
			executeTemplate(w, r, logger, t, http.StatusUnprocessableEntity, data)

			return
		case err != nil:
			logger.Error(r.Context(), "error saving question", logging.ErrAttr(err))
			render500(w, r, logger)

			return
		}

		http.Redirect(w, r, listPath, http.StatusSeeOther)
	})
}

// HandleQuestionEdit takes the selected question out of the store and returns a form prefilled with it.
// The question is stored again, at the end of the list, when the form is saved.
func HandleQuestionEdit(logger *logging.Logger, svc *manage.Service) http.Handler {
	t := parseTemplate("admin/pages/questionform.gohtml")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		index, ok := httputil.ParseIndexFromPath(r, logger.Slog(), "index")
		if !ok {
			renderNoSelection(w, r, logger, svc)

			return
		}

		q, err := svc.Edit(r.Context(), index)
		if err != nil {
			if errors.Is(err, manage.ErrNoSelection) {
				renderNoSelection(w, r, logger, svc)

				return
			}
			logger.Error(r.Context(), "error extracting question", logging.ErrAttr(err))
			render500(w, r, logger)

			return
		}

		data := formData(editingTitle, q, nil)
		data.Editing = true
		executeTemplate(w, r, logger, t, http.StatusOK, data)
	})
}

// HandleQuestionDeleteConfirm returns the delete confirmation page for the selected question.
func HandleQuestionDeleteConfirm(logger *logging.Logger, svc *manage.Service) http.Handler {
	t := parseTemplate("admin/pages/questiondelete.gohtml")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		index, ok := httputil.ParseIndexFromPath(r, logger.Slog(), "index")
		if !ok {
			renderNoSelection(w, r, logger, svc)

			return
		}

		q, err := svc.Get(r.Context(), index)
		if err != nil {
			if errors.Is(err, manage.ErrNoSelection) {
				renderNoSelection(w, r, logger, svc)

				return
			}
			logger.Error(r.Context(), "error fetching question", logging.ErrAttr(err))
			render500(w, r, logger)

			return
		}

		data := QuestionDeleteData{
			Title:    "Admin Dashboard - Delete Question",
			Position: index + 1,
			Question: q,
		}
		executeTemplate(w, r, logger, t, http.StatusOK, data)
	})
}

// HandleQuestionDelete deletes the selected question and redirects to the list.
func HandleQuestionDelete(logger *logging.Logger, svc *manage.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		index, ok := httputil.ParseIndexFromPath(r, logger.Slog(), "index")
		if !ok {
			renderNoSelection(w, r, logger, svc)

			return
		}

		if err := svc.Delete(r.Context(), index); err != nil {
			if errors.Is(err, manage.ErrNoSelection) {
				renderNoSelection(w, r, logger, svc)

				return
			}
			logger.Error(r.Context(), "error deleting question", logging.ErrAttr(err))
			render500(w, r, logger)

			return
		}

		http.Redirect(w, r, listPath, http.StatusSeeOther)
	})
}

// HandleNotFound renders the admin 404 page.
func HandleNotFound(logger *logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render404(w, r, logger)
	})
}
