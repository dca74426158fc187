// Package clientapi provides HTTP handlers for the API used by the quiz client.
package clientapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starquake/quizgen/internal/httputil"
	"github.com/starquake/quizgen/internal/manage"
	"github.com/starquake/quizgen/internal/quiz"
	"github.com/starquake/quizgen/internal/session"
)

// NoAnswerMessage is returned when an answer is submitted without a selection.
const NoAnswerMessage = "Please select an answer before submitting."

type choiceResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

type scoreResponse struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

func newScoreResponse(s session.Score) scoreResponse {
	return scoreResponse{Total: s.Total, Answered: s.Answered, Correct: s.Correct}
}

func choicesResponse(c quiz.Choices) []choiceResponse {
	res := make([]choiceResponse, 0, len(quiz.Keys))
	for _, k := range quiz.Keys {
		res = append(res, choiceResponse{Key: string(k), Label: k.Label(), Text: c.Text(k)})
	}

	return res
}

// sessionFromPath looks up the session named in the path. It writes the error response and returns false when the
// session does not exist.
func sessionFromPath(w http.ResponseWriter, r *http.Request, service *session.Service) (*session.Session, bool) {
	id := r.PathValue("sessionID")
	if id == "" {
		httputil.Error(w, http.StatusBadRequest, "missing sessionID in request path")

		return nil, false
	}

	sess, err := service.Get(id)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, err.Error())

		return nil, false
	}

	return sess, true
}

// HandleQuestionCount returns the number of stored questions.
func HandleQuestionCount(logger *slog.Logger, svc *manage.Service) http.Handler {
	type countResponse struct {
		Count int `json:"count"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.Count(r.Context())
		if err != nil {
			logger.ErrorContext(r.Context(), "error counting questions", slog.Any("err", err))
			httputil.Error(w, http.StatusInternalServerError, "error loading questions")

			return
		}

		if err = httputil.EncodeJSON(w, http.StatusOK, countResponse{Count: n}); err != nil {
			logger.ErrorContext(r.Context(), "error encoding countResponse", slog.Any("err", err))
		}
	})
}

// HandleSessionCreate starts a new answering session over the current questions.
// Returns 201 with the session ID and a Location header.
func HandleSessionCreate(logger *slog.Logger, service *session.Service) http.Handler {
	type createSessionResponse struct {
		ID    string        `json:"id"`
		Score scoreResponse `json:"score"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := service.Start(r.Context())
		if err != nil {
			logger.ErrorContext(r.Context(), "error starting session", slog.Any("err", err))
			httputil.Error(w, http.StatusInternalServerError, "error starting session")

			return
		}

		res := createSessionResponse{ID: sess.ID, Score: newScoreResponse(sess.Score())}

		w.Header().Set("Location", "/api/sessions/"+sess.ID)
		if err = httputil.EncodeJSON(w, http.StatusCreated, res); err != nil {
			logger.ErrorContext(r.Context(), "error encoding createSessionResponse", slog.Any("err", err))
		}
	})
}

// HandleSessionQuestion returns the current question of a session, drawing a new one when needed.
// When every question has been answered it returns done with the final score.
func HandleSessionQuestion(logger *slog.Logger, service *session.Service) http.Handler {
	type questionResponse struct {
		Text    string           `json:"text"`
		Choices []choiceResponse `json:"choices"`
	}

	type nextResponse struct {
		Done      bool              `json:"done"`
		Question  *questionResponse `json:"question,omitempty"`
		Remaining int               `json:"remaining"`
		Score     scoreResponse     `json:"score"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFromPath(w, r, service)
		if !ok {
			return
		}

		res := nextResponse{}
		q, err := sess.Next()
		switch {
		case errors.Is(err, session.ErrNoMoreQuestions):
			res.Done = true
		case err != nil:
			logger.ErrorContext(r.Context(), "error drawing question", slog.Any("err", err))
			httputil.Error(w, http.StatusInternalServerError, "error drawing question")

			return
		default:
			res.Question = &questionResponse{Text: q.Question, Choices: choicesResponse(q.Choices)}
		}
		res.Remaining = sess.Remaining()
		res.Score = newScoreResponse(sess.Score())

		if err = httputil.EncodeJSON(w, http.StatusOK, res); err != nil {
			logger.ErrorContext(r.Context(), "error encoding nextResponse", slog.Any("err", err))
		}
	})
}

// HandleSessionAnswer checks the submitted answer against the current question of a session.
// Returns 422 when no answer was selected, 400 for an unknown choice and 409 when no question is current.
func HandleSessionAnswer(logger *slog.Logger, service *session.Service) http.Handler {
	type answerRequest struct {
		Answer string `json:"answer"`
	}

	type answerResponse struct {
		Correct    bool          `json:"correct"`
		Selected   string        `json:"selected"`
		Answer     string        `json:"answer"`
		AnswerText string        `json:"answerText"`
		Score      scoreResponse `json:"score"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFromPath(w, r, service)
		if !ok {
			return
		}

		req, err := httputil.DecodeJSON[answerRequest](r)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, err.Error())

			return
		}

		result, err := sess.Answer(req.Answer)
		switch {
		case errors.Is(err, session.ErrNoAnswer):
			httputil.Error(w, http.StatusUnprocessableEntity, NoAnswerMessage)

			return
		case errors.Is(err, quiz.ErrInvalidKey):
			httputil.Error(w, http.StatusBadRequest, err.Error())

			return
		case errors.Is(err, session.ErrNoCurrentQuestion):
			httputil.Error(w, http.StatusConflict, err.Error())

			return
		case err != nil:
			logger.ErrorContext(r.Context(), "error submitting answer", slog.Any("err", err))
			httputil.Error(w, http.StatusInternalServerError, "error submitting answer")

			return
		}

		res := answerResponse{
			Correct:    result.Correct,
			Selected:   result.Selected.Label(),
			Answer:     result.Question.Answer.Label(),
			AnswerText: result.Question.AnswerText(),
			Score:      newScoreResponse(sess.Score()),
		}

		if err = httputil.EncodeJSON(w, http.StatusOK, res); err != nil {
			logger.ErrorContext(r.Context(), "error encoding answerResponse", slog.Any("err", err))
		}
	})
}

// HandleSessionEnd ends a session. Returns 204.
func HandleSessionEnd(logger *slog.Logger, service *session.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("sessionID")
		if err := service.End(r.Context(), id); err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				httputil.Error(w, http.StatusNotFound, err.Error())

				return
			}
			logger.ErrorContext(r.Context(), "error ending session", slog.Any("err", err))
			httputil.Error(w, http.StatusInternalServerError, "error ending session")

			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
