package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studybuddy-backend/internal/domain/curriculum"
	"github.com/yungbote/studybuddy-backend/internal/http/response"
	"github.com/yungbote/studybuddy-backend/internal/services"
)

// CurriculumHandler is the admin surface for subjects, topics and quizzes.
type CurriculumHandler struct {
	curriculumService services.CurriculumService
}

func NewCurriculumHandler(curriculumService services.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{curriculumService: curriculumService}
}

type topicRequest struct {
	ID          *uuid.UUID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ClassID     string     `json:"classId"`
}

func (t topicRequest) input() services.TopicInput {
	return services.TopicInput{ID: t.ID, Name: t.Name, Description: t.Description, ClassID: t.ClassID}
}

type subjectRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Topics      []topicRequest `json:"topics"`
}

func (s subjectRequest) input() services.SubjectInput {
	in := services.SubjectInput{Name: s.Name, Description: s.Description}
	if s.Topics != nil {
		in.Topics = make([]services.TopicInput, 0, len(s.Topics))
		for _, t := range s.Topics {
			in.Topics = append(in.Topics, t.input())
		}
	}
	return in
}

type quizRequest struct {
	Question        string              `json:"question"`
	Options         []curriculum.Option `json:"options"`
	SubjectID       string              `json:"subjectId"`
	TopicID         string              `json:"topicId"`
	Type            string              `json:"type"`
	Difficulty      *int                `json:"difficulty"`
	DifficultyLevel string              `json:"difficultyLevel"`
	Explanation     string              `json:"explanation"`
	ClassID         string              `json:"classId"`
}

// input always returns a usable QuizInput; unparseable ids become uuid.Nil
// and are reported through the error.
func (q quizRequest) input() (services.QuizInput, error) {
	var firstErr error
	subjectID, err := uuid.Parse(q.SubjectID)
	if err != nil {
		firstErr = fmt.Errorf("subjectId must be a uuid")
	}
	topicID, err := uuid.Parse(q.TopicID)
	if err != nil && firstErr == nil {
		firstErr = fmt.Errorf("topicId must be a uuid")
	}
	return services.QuizInput{
		Question:        q.Question,
		Options:         q.Options,
		SubjectID:       subjectID,
		TopicID:         topicID,
		Type:            q.Type,
		Difficulty:      q.Difficulty,
		DifficultyLevel: q.DifficultyLevel,
		Explanation:     q.Explanation,
		ClassID:         q.ClassID,
	}, firstErr
}

// GET /admin/subjects
func (h *CurriculumHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.curriculumService.ListSubjects(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, subjects)
}

// GET /admin/subjects/:id
func (h *CurriculumHandler) GetSubject(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	subject, err := h.curriculumService.GetSubject(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, subject)
}

// POST /admin/subjects
func (h *CurriculumHandler) CreateSubject(c *gin.Context) {
	var req subjectRequest
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.curriculumService.CreateSubject(c.Request.Context(), req.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, subject)
}

// PUT /admin/subjects/:id
func (h *CurriculumHandler) UpdateSubject(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req subjectRequest
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.curriculumService.UpdateSubject(c.Request.Context(), id, req.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, subject)
}

// DELETE /admin/subjects/:id
func (h *CurriculumHandler) DeleteSubject(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.curriculumService.DeleteSubject(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	success(c)
}

// POST /admin/subjects/:id/topics
func (h *CurriculumHandler) AddSubjectTopic(c *gin.Context) {
	subjectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req topicRequest
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.curriculumService.AddTopic(c.Request.Context(), subjectID, req.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, subject)
}

type topicEnvelope struct {
	SubjectID uuid.UUID    `json:"subjectId"`
	TopicID   uuid.UUID    `json:"topicId"`
	Topic     topicRequest `json:"topic"`
}

// POST /admin/topics
func (h *CurriculumHandler) AddTopic(c *gin.Context) {
	var req topicEnvelope
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.curriculumService.AddTopic(c.Request.Context(), req.SubjectID, req.Topic.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, subject)
}

// PUT /admin/topics
func (h *CurriculumHandler) UpdateTopic(c *gin.Context) {
	var req topicEnvelope
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.curriculumService.UpdateTopic(c.Request.Context(), req.SubjectID, req.TopicID, req.Topic.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, subject)
}

// DELETE /admin/topics?subjectId&topicId
func (h *CurriculumHandler) DeleteTopic(c *gin.Context) {
	subjectID, ok := requiredQueryUUID(c, "subjectId")
	if !ok {
		return
	}
	topicID, ok := requiredQueryUUID(c, "topicId")
	if !ok {
		return
	}
	subject, err := h.curriculumService.DeleteTopic(c.Request.Context(), subjectID, topicID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, subject)
}

// POST /admin/quizzes
func (h *CurriculumHandler) CreateQuiz(c *gin.Context) {
	var req quizRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	quiz, err := h.curriculumService.CreateQuiz(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, quiz)
}

// POST /admin/quizzes/bulk
// Rows with malformed ids reach the service with nil ids and fail there as not found.
func (h *CurriculumHandler) CreateQuizzes(c *gin.Context) {
	var req struct {
		Questions []quizRequest `json:"questions"`
	}
	if !bindJSON(c, &req) {
		return
	}
	inputs := make([]services.QuizInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		in, _ := q.input()
		inputs = append(inputs, in)
	}
	res, err := h.curriculumService.CreateQuizzes(c.Request.Context(), inputs)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /admin/quizzes?subjectId&topicId&classId&noOfQuestions
func (h *CurriculumHandler) ListQuizzes(c *gin.Context) {
	subjectID, ok := optionalQueryUUID(c, "subjectId")
	if !ok {
		return
	}
	topicID, ok := optionalQueryUUID(c, "topicId")
	if !ok {
		return
	}
	quizzes, err := h.curriculumService.ListQuizzes(c.Request.Context(), services.QuizQuery{
		SubjectID:     subjectID,
		TopicID:       topicID,
		ClassID:       c.Query("classId"),
		NoOfQuestions: queryInt(c, "noOfQuestions", 0),
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, quizzes)
}

// GET /admin/quizzes/:id
func (h *CurriculumHandler) GetQuiz(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	quiz, err := h.curriculumService.GetQuiz(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, quiz)
}

// PUT /admin/quizzes/:id
func (h *CurriculumHandler) UpdateQuiz(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Question        *string             `json:"question"`
		Options         []curriculum.Option `json:"options"`
		Type            *string             `json:"type"`
		Difficulty      *int                `json:"difficulty"`
		DifficultyLevel *string             `json:"difficultyLevel"`
		Explanation     *string             `json:"explanation"`
		ClassID         *string             `json:"classId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	quiz, err := h.curriculumService.UpdateQuiz(c.Request.Context(), id, services.QuizUpdate{
		Question:        req.Question,
		Options:         req.Options,
		Type:            req.Type,
		Difficulty:      req.Difficulty,
		DifficultyLevel: req.DifficultyLevel,
		Explanation:     req.Explanation,
		ClassID:         req.ClassID,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, quiz)
}

// DELETE /admin/quizzes/:id
func (h *CurriculumHandler) DeleteQuiz(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.curriculumService.DeleteQuiz(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	success(c)
}
