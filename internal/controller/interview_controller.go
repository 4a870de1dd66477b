package controller

import (
	"interview_prep_backend/internal/service"
	"interview_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InterviewController struct {
	InterviewService *service.InterviewService
}

func NewInterviewController(interviewService *service.InterviewService) *InterviewController {
	return &InterviewController{InterviewService: interviewService}
}

type CreateSessionRequest struct {
	JobTitle  string                    `json:"jobTitle" binding:"required"`
	Mode      string                    `json:"mode"`
	Questions []service.PlannedQuestion `json:"questions" binding:"required,min=1,dive"`
}

type SubmitAnswerRequest struct {
	Question   string `json:"question" binding:"required"`
	Answer     string `json:"answer"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty" binding:"required"`
}

// @Summary 创建面试会话
// @Description 题目由调用方生成，这里只记录类别与难度；登录时归属到当前用户
// @Tags 面试
// @Accept json
// @Produce json
// @Param session body CreateSessionRequest true "会话信息"
// @Success 201 {object} util.Response
// @Router /api/interviews [post]
func (c *InterviewController) CreateSession(ctx *gin.Context) {
	var req CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.InterviewService.CreateSession(ctx.Request.Context(), service.CreateSessionInput{
		OwnerID:   util.GetOwnerFromContext(ctx),
		JobTitle:  req.JobTitle,
		Mode:      req.Mode,
		Questions: req.Questions,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// @Summary 提交回答
// @Description 评估回答并更新会话的运行指标
// @Tags 面试
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param answer body SubmitAnswerRequest true "回答内容"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/interviews/{id}/answers [post]
func (c *InterviewController) SubmitAnswer(ctx *gin.Context) {
	sessionID := ctx.Param("id")
	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !c.authorize(ctx, sessionID) {
		return
	}

	result, err := c.InterviewService.SubmitAnswer(ctx.Request.Context(), service.SubmitAnswerInput{
		SessionID:  sessionID,
		Question:   req.Question,
		Answer:     req.Answer,
		Category:   req.Category,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"record":             result.Record,
		"answeredQuestions":  result.Session.AnsweredQuestions,
		"totalQuestions":     result.Session.TotalQuestions,
		"performanceMetrics": result.Session.PerformanceMetrics,
		"progressInsights":   result.Session.Insights(),
	})
}

// @Summary 结束面试会话
// @Tags 面试
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/interviews/{id}/complete [post]
func (c *InterviewController) CompleteSession(ctx *gin.Context) {
	sessionID := ctx.Param("id")
	if !c.authorize(ctx, sessionID) {
		return
	}

	session, err := c.InterviewService.CompleteSession(ctx.Request.Context(), sessionID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// authorize 写完响应后返回 false
func (c *InterviewController) authorize(ctx *gin.Context, sessionID string) bool {
	if err := c.InterviewService.CheckAccess(ctx.Request.Context(), sessionID, util.GetOwnerFromContext(ctx)); err != nil {
		util.RespondError(ctx, err)
		return false
	}
	return true
}
