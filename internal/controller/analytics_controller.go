package controller

import (
	"interview_prep_backend/internal/service"
	"interview_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
	InterviewService *service.InterviewService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService, interviewService *service.InterviewService) *AnalyticsController {
	return &AnalyticsController{
		AnalyticsService: analyticsService,
		InterviewService: interviewService,
	}
}

// @Summary 获取会话分析
// @Description 从反馈记录重新计算的单个会话报表
// @Tags 分析
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/interviews/{id}/analytics [get]
func (c *AnalyticsController) GetSessionAnalytics(ctx *gin.Context) {
	sessionID := ctx.Param("id")
	if err := c.InterviewService.CheckAccess(ctx.Request.Context(), sessionID, util.GetOwnerFromContext(ctx)); err != nil {
		util.RespondError(ctx, err)
		return
	}

	report, err := c.AnalyticsService.GetSessionAnalytics(ctx.Request.Context(), sessionID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, report)
}

// @Summary 获取学习进度
// @Description 当前时间段内的会话汇总
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param period query string false "时间段，例如 7 days、30d、1 year" default(30 days)
// @Success 200 {object} util.Response
// @Router /api/analytics/progress [get]
func (c *AnalyticsController) GetProgress(ctx *gin.Context) {
	owner := util.GetOwnerFromContext(ctx)
	if owner == "" {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.AnalyticsService.GetUserProgressForPeriod(ctx.Request.Context(), owner, ctx.DefaultQuery("period", util.DefaultPeriod))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// @Summary 获取对比分析
// @Description 当前时间段与上一时间段的对比
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param period query string false "时间段" default(30 days)
// @Success 200 {object} util.Response
// @Router /api/analytics/comparative [get]
func (c *AnalyticsController) GetComparative(ctx *gin.Context) {
	owner := util.GetOwnerFromContext(ctx)
	if owner == "" {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.AnalyticsService.GetComparativeAnalysis(ctx.Request.Context(), owner, ctx.DefaultQuery("period", util.DefaultPeriod))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
