package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studybuddy-backend/internal/http/response"
	"github.com/yungbote/studybuddy-backend/internal/services"
)

// StudyHandler serves the student-facing curriculum under /users.
type StudyHandler struct {
	studyService services.StudyService
}

func NewStudyHandler(studyService services.StudyService) *StudyHandler {
	return &StudyHandler{studyService: studyService}
}

// GET /users/subjects
func (sh *StudyHandler) ListSubjects(c *gin.Context) {
	subjects, err := sh.studyService.SubjectsForUser(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, subjects)
}

// GET /users/subjects/:id
func (sh *StudyHandler) GetSubject(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	subject, err := sh.studyService.SubjectForUser(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, subject)
}

// GET /users/quizzes?subjectId&topicId&noOfQuestions
func (sh *StudyHandler) ListQuizzes(c *gin.Context) {
	subjectID, ok := optionalQueryUUID(c, "subjectId")
	if !ok {
		return
	}
	topicID, ok := optionalQueryUUID(c, "topicId")
	if !ok {
		return
	}
	quizzes, err := sh.studyService.QuizzesForUser(c.Request.Context(), services.QuizQuery{
		SubjectID:     subjectID,
		TopicID:       topicID,
		NoOfQuestions: queryInt(c, "noOfQuestions", 0),
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, quizzes)
}

// POST /users/quiz-attempts
func (sh *StudyHandler) SubmitAttempt(c *gin.Context) {
	var req struct {
		SubjectID uuid.UUID `json:"subjectId"`
		TopicID   uuid.UUID `json:"topicId"`
		Answers   []struct {
			QuizID         uuid.UUID `json:"quizId"`
			SelectedAnswer int       `json:"selectedAnswer"`
			TimeSpent      int       `json:"timeSpent"`
		} `json:"answers"`
		TotalTimeSpent *int `json:"totalTimeSpent"`
	}
	if !bindJSON(c, &req) {
		return
	}
	in := services.AttemptInput{
		SubjectID:      req.SubjectID,
		TopicID:        req.TopicID,
		TotalTimeSpent: req.TotalTimeSpent,
	}
	for _, a := range req.Answers {
		in.Answers = append(in.Answers, services.AnswerInput{
			QuizID:         a.QuizID,
			SelectedAnswer: a.SelectedAnswer,
			TimeSpent:      a.TimeSpent,
		})
	}
	attempt, err := sh.studyService.SubmitAttempt(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, attempt)
}

// GET /users/quiz-attempts
func (sh *StudyHandler) ListAttempts(c *gin.Context) {
	attempts, err := sh.studyService.ListAttempts(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, attempts)
}
