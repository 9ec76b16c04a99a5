package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fyerfyer/valmiki-reader/api/middleware"
	"github.com/fyerfyer/valmiki-reader/api/model"
	"github.com/fyerfyer/valmiki-reader/internal/sloka"
	"github.com/fyerfyer/valmiki-reader/pkg/taskqueue"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TaskHandler 处理预取任务相关的API请求
type TaskHandler struct {
	queue  taskqueue.Queue // 任务队列
	logger *logrus.Logger  // 日志记录器
}

// NewTaskHandler 创建新的任务处理器
func NewTaskHandler(queue taskqueue.Queue) *TaskHandler {
	return &TaskHandler{
		queue:  queue,
		logger: middleware.GetLogger(),
	}
}

// EnqueuePrefetch 入队一个预取任务
// POST /api/tasks/prefetch
func (h *TaskHandler) EnqueuePrefetch(c *gin.Context) {
	var req model.PrefetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithField("error", err.Error()).Warn("Invalid prefetch request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	script := req.Script
	if script == "" {
		script = string(sloka.ScriptTelugu)
	}
	if !sloka.Script(script).Valid() {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的文字版本，支持 te 或 dv",
		))
		return
	}

	var (
		taskType  taskqueue.TaskType
		subjectID string
		payload   interface{}
	)

	switch taskqueue.TaskType(req.Type) {
	case taskqueue.TaskSargaPrefetch:
		if req.Sarga <= 0 {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"预取单章需要章号",
			))
			return
		}
		p := taskqueue.SargaPrefetchPayload{
			Kanda:  req.Kanda,
			Sarga:  req.Sarga,
			Script: script,
		}
		taskType, subjectID, payload = taskqueue.TaskSargaPrefetch, p.SubjectID(), p
	case taskqueue.TaskKandaScan:
		p := taskqueue.KandaScanPayload{
			Kanda:    req.Kanda,
			MaxSarga: req.MaxSarga,
			Script:   script,
		}
		taskType, subjectID, payload = taskqueue.TaskKandaScan, p.SubjectID(), p
	default:
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"不支持的任务类型",
		))
		return
	}

	taskID, err := h.queue.Enqueue(c.Request.Context(), taskType, subjectID, payload)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"task_type": taskType,
			"subject":   subjectID,
			"error":     err.Error(),
		}).Error("Failed to enqueue prefetch task")
		middleware.HandleError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": taskType,
		"subject":   subjectID,
	}).Info("Prefetch task enqueued")

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.TaskEnqueueResponse{
		TaskID: taskID,
		Type:   string(taskType),
		Status: string(taskqueue.StatusPending),
	}))
}

// GetTaskStatus 获取任务状态
// GET /api/tasks/:id
func (h *TaskHandler) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"任务ID不能为空",
		))
		return
	}

	task, err := h.queue.GetTask(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, taskqueue.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"任务未找到",
			))
			return
		}

		h.logger.WithFields(logrus.Fields{
			"task_id": taskID,
			"error":   err.Error(),
		}).Error("Failed to get task")
		middleware.HandleError(c, err)
		return
	}

	if task == nil {
		c.JSON(http.StatusNotFound, model.NewErrorResponse(
			http.StatusNotFound,
			"任务未找到",
		))
		return
	}

	resp := model.TaskStatusResponse{
		TaskID:    task.ID,
		Type:      string(task.Type),
		Status:    string(task.Status),
		Error:     task.Error,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}

	// 任务结果保留原始JSON结构
	if len(task.Result) > 0 {
		var result map[string]interface{}
		if err := json.Unmarshal(task.Result, &result); err == nil {
			resp.Result = result
		}
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// GetSubjectTasks 获取某卷或某章相关的所有任务
// GET /api/tasks/subject/:subject
func (h *TaskHandler) GetSubjectTasks(c *gin.Context) {
	subjectID := c.Param("subject")
	if subjectID == "" {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"任务对象标识不能为空",
		))
		return
	}

	tasks, err := h.queue.GetTasksBySubject(c.Request.Context(), subjectID)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"subject": subjectID,
			"error":   err.Error(),
		}).Error("Failed to get subject tasks")
		middleware.HandleError(c, err)
		return
	}

	infos := make([]*taskqueue.TaskInfo, 0, len(tasks))
	for _, task := range tasks {
		infos = append(infos, taskqueue.NewTaskInfo(task))
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.SubjectTasksResponse{
		Subject: subjectID,
		Total:   len(infos),
		Tasks:   infos,
	}))
}
