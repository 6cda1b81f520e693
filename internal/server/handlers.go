package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/output"
)

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Eisenhower task board",
		"board":   s.boardName,
		"endpoints": []string{
			"GET /tasks", "POST /tasks", "GET /tasks/{id}", "PATCH /tasks/{id}",
			"DELETE /tasks/{id}", "POST /tasks/{id}/complete", "POST /tasks/{id}/reopen",
			"GET /tasks/quadrant/{quadrant}", "GET /tasks/status/{status}",
			"GET /tasks/search?q=", "POST /tasks/refresh", "GET /stats",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleList(c *gin.Context) {
	tasks, err := s.board.ListAll(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, output.NewTaskList(tasks))
}

func (s *Server) handleCreate(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badBody(err))
		return
	}
	in, err := req.toInput(s.board.Now())
	if err != nil {
		s.fail(c, err)
		return
	}
	t, err := s.board.Create(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleGet(c *gin.Context) {
	id, ok := s.taskID(c)
	if !ok {
		return
	}
	t, err := s.board.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t})
}

func (s *Server) handleUpdate(c *gin.Context) {
	id, ok := s.taskID(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badBody(err))
		return
	}
	p, err := req.toPatch(s.board.Now())
	if err != nil {
		s.fail(c, err)
		return
	}
	t, err := s.board.Update(c.Request.Context(), id, p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleComplete(c *gin.Context) {
	id, ok := s.taskID(c)
	if !ok {
		return
	}
	t, err := s.board.Complete(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleReopen(c *gin.Context) {
	id, ok := s.taskID(c)
	if !ok {
		return
	}
	t, err := s.board.Reopen(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := s.taskID(c)
	if !ok {
		return
	}
	del, err := s.board.Delete(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": del.ID, "title": del.Title})
}

func (s *Server) handleListByQuadrant(c *gin.Context) {
	q, tasks, err := s.board.ListByQuadrant(c.Request.Context(), c.Param("quadrant"))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := output.NewTaskList(tasks)
	resp.Quadrant = string(q)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListByStatus(c *gin.Context) {
	status := c.Param("status")
	tasks, err := s.board.ListByStatus(c.Request.Context(), status)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := output.NewTaskList(tasks)
	resp.Status = status
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSearch(c *gin.Context) {
	q := c.Query("q")
	tasks, err := s.board.Search(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := output.NewTaskList(tasks)
	resp.Query = q
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRefresh(c *gin.Context) {
	changed, err := s.board.Refresh(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, output.NewTaskList(changed))
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.board.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) taskID(c *gin.Context) (int, bool) {
	id, err := board.ParseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return 0, false
	}
	return id, true
}

// fail writes the error envelope. Infrastructure errors are logged and
// reported without their internal message.
func (s *Server) fail(c *gin.Context, err error) {
	e := clierr.As(err)
	status := e.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", c.GetString(requestIDKey), "error", err)
		e = clierr.New(clierr.InternalError, "internal storage error")
	}
	c.AbortWithStatusJSON(status, output.NewErrorResponse(e))
}
